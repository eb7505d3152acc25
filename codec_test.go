// FILE: lixenwraith/confvar/codec_test.go
package config

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip checks Decode(Encode(v)) == v for the resolved codec of T
func roundTrip[T any](t *testing.T, value T) string {
	t.Helper()
	c, err := CodecFor[T]()
	require.NoError(t, err)

	text, err := c.Encode(value)
	require.NoError(t, err)

	decoded, err := c.Decode(text)
	require.NoError(t, err, "decoding %q", text)
	assert.Equal(t, value, decoded)
	return text
}

// TestScalarCodecs tests literal parsing and formatting of scalar types
func TestScalarCodecs(t *testing.T) {
	t.Run("Int", func(t *testing.T) {
		c, err := CodecFor[int]()
		require.NoError(t, err)

		v, err := c.Decode("42")
		require.NoError(t, err)
		assert.Equal(t, 42, v)

		v, err = c.Decode(" -7 ")
		require.NoError(t, err)
		assert.Equal(t, -7, v)

		v, err = c.Decode("0x1F")
		require.NoError(t, err)
		assert.Equal(t, 31, v)

		text, err := c.Encode(42)
		require.NoError(t, err)
		assert.Equal(t, "42", text)
	})

	t.Run("IntOverflow", func(t *testing.T) {
		c, err := CodecFor[int8]()
		require.NoError(t, err)
		_, err = c.Decode("300")
		assert.ErrorIs(t, err, ErrInvalidLiteral)
	})

	t.Run("Uint", func(t *testing.T) {
		assert.Equal(t, "65535", roundTrip(t, uint16(65535)))

		c, err := CodecFor[uint]()
		require.NoError(t, err)
		_, err = c.Decode("-1")
		assert.ErrorIs(t, err, ErrInvalidLiteral)
	})

	t.Run("Bool", func(t *testing.T) {
		assert.Equal(t, "true", roundTrip(t, true))
		assert.Equal(t, "false", roundTrip(t, false))

		c, err := CodecFor[bool]()
		require.NoError(t, err)
		_, err = c.Decode("yes please")
		assert.ErrorIs(t, err, ErrInvalidLiteral)
	})

	t.Run("Float", func(t *testing.T) {
		assert.Equal(t, "1.5", roundTrip(t, 1.5))
		assert.Equal(t, "0.1", roundTrip(t, float32(0.1)))
	})

	t.Run("String", func(t *testing.T) {
		c, err := CodecFor[string]()
		require.NoError(t, err)

		// Strings are verbatim, never trimmed or YAML-parsed
		v, err := c.Decode("  [not, a, list] ")
		require.NoError(t, err)
		assert.Equal(t, "  [not, a, list] ", v)

		assert.Equal(t, "hello world", roundTrip(t, "hello world"))
		assert.Equal(t, "", roundTrip(t, ""))
	})

	t.Run("Duration", func(t *testing.T) {
		assert.Equal(t, "1m30s", roundTrip(t, 90*time.Second))

		c, err := CodecFor[time.Duration]()
		require.NoError(t, err)
		v, err := c.Decode("1500")
		require.NoError(t, err)
		assert.Equal(t, 1500*time.Nanosecond, v)
	})

	t.Run("Time", func(t *testing.T) {
		ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		assert.Equal(t, "2024-01-02T03:04:05Z", roundTrip(t, ts))
	})

	t.Run("InvalidLiteral", func(t *testing.T) {
		c, err := CodecFor[int]()
		require.NoError(t, err)

		_, err = c.Decode("abc")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidLiteral)

		var ce *CastError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "abc", ce.Input)
		assert.Equal(t, "int", ce.Type)
	})
}

// TestContainerCodecs tests sequence, set and mapping composition
func TestContainerCodecs(t *testing.T) {
	t.Run("Sequence", func(t *testing.T) {
		assert.Equal(t, "[1, 2, 3]", roundTrip(t, []int{1, 2, 3}))
		assert.Equal(t, "[a, b]", roundTrip(t, []string{"a", "b"}))
		assert.Equal(t, "[]", roundTrip(t, []int{}))
	})

	t.Run("SequenceOrderPreserved", func(t *testing.T) {
		c, err := CodecFor[[]int]()
		require.NoError(t, err)
		v, err := c.Decode("[3, 1, 2]")
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2}, v)
	})

	t.Run("SequenceOfAmbiguousStrings", func(t *testing.T) {
		// Strings that look like other scalars must survive
		roundTrip(t, []string{"1", "true", "", "a, b", "x: y", "~"})
	})

	t.Run("SequenceFromBlockStyle", func(t *testing.T) {
		c, err := CodecFor[[]string]()
		require.NoError(t, err)
		v, err := c.Decode("- a\n- b\n")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, v)
	})

	t.Run("EmptyTextIsEmptyContainer", func(t *testing.T) {
		c, err := CodecFor[[]int]()
		require.NoError(t, err)
		v, err := c.Decode("")
		require.NoError(t, err)
		assert.Empty(t, v)

		m, err := CodecFor[map[string]int]()
		require.NoError(t, err)
		mv, err := m.Decode("")
		require.NoError(t, err)
		assert.Empty(t, mv)
	})

	t.Run("Set", func(t *testing.T) {
		set := map[int]struct{}{3: {}, 1: {}, 2: {}}
		assert.Equal(t, "[1, 2, 3]", roundTrip(t, set))

		c, err := CodecFor[map[string]struct{}]()
		require.NoError(t, err)
		v, err := c.Decode("[b, a, b]")
		require.NoError(t, err)
		assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, v)
	})

	t.Run("Mapping", func(t *testing.T) {
		assert.Equal(t, "{a: 1, b: 2}", roundTrip(t, map[string]int{"b": 2, "a": 1}))
		assert.Equal(t, "{}", roundTrip(t, map[string]bool{}))
	})

	t.Run("MappingKeysNeedingQuotes", func(t *testing.T) {
		text := roundTrip(t, map[string]string{"<<": "v", "a.b": "1", "": "e", "x: y": "z"})
		assert.Contains(t, text, `"<<": v`)

		// Real merge keys are still honoured on decode
		c, err := CodecFor[map[string]int]()
		require.NoError(t, err)
		v, err := c.Decode("{<<: {a: 1, b: 1}, b: 2}")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"a": 1, "b": 2}, v)
	})

	t.Run("NullElementsAreZero", func(t *testing.T) {
		strs, err := CodecFor[map[string]string]()
		require.NoError(t, err)
		sv, err := strs.Decode("{a: ~, b: , c: x, d: \"~\"}")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "", "b": "", "c": "x", "d": "~"}, sv)

		ints, err := CodecFor[map[string]int]()
		require.NoError(t, err)
		iv, err := ints.Decode("{a: ~, b: null, c: 3}")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"a": 0, "b": 0, "c": 3}, iv)

		list, err := CodecFor[[]time.Duration]()
		require.NoError(t, err)
		lv, err := list.Decode("[~, 1s]")
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{0, time.Second}, lv)
	})

	t.Run("TopLevelScalarTextIsLiteral", func(t *testing.T) {
		assert.Equal(t, "~", roundTrip(t, "~"))
		assert.Equal(t, "null", roundTrip(t, "null"))

		ints, err := CodecFor[int]()
		require.NoError(t, err)
		_, err = ints.Decode("")
		assert.ErrorIs(t, err, ErrInvalidLiteral)
		_, err = ints.Decode("~")
		assert.ErrorIs(t, err, ErrInvalidLiteral)
	})

	t.Run("NilContainersEncodeEmpty", func(t *testing.T) {
		seq, err := CodecFor[[]int]()
		require.NoError(t, err)
		text, err := seq.Encode(nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", text)
		v, err := seq.Decode(text)
		require.NoError(t, err)
		assert.NotNil(t, v)
		assert.Empty(t, v)

		m, err := CodecFor[map[string]bool]()
		require.NoError(t, err)
		text, err = m.Encode(nil)
		require.NoError(t, err)
		assert.Equal(t, "{}", text)
		mv, err := m.Decode(text)
		require.NoError(t, err)
		assert.NotNil(t, mv)
		assert.Empty(t, mv)

		set, err := CodecFor[map[string]struct{}]()
		require.NoError(t, err)
		text, err = set.Encode(nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", text)
	})

	t.Run("Nested", func(t *testing.T) {
		assert.Equal(t, "{x: [1, 2], y: []}", roundTrip(t, map[string][]int{"x": {1, 2}, "y": {}}))
		roundTrip(t, []map[string]bool{{"a": true}, {"b": false}})
		roundTrip(t, map[string]map[string]struct{}{"g": {"m": {}, "n": {}}})
		roundTrip(t, [][]time.Duration{{time.Second}, {time.Minute, time.Hour}})
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		c, err := CodecFor[[]int]()
		require.NoError(t, err)

		_, err = c.Decode("{a: 1}")
		assert.ErrorIs(t, err, ErrInvalidLiteral)

		_, err = c.Decode("[1, x]")
		assert.ErrorIs(t, err, ErrInvalidLiteral)

		_, err = c.Decode("[1, 2")
		assert.ErrorIs(t, err, ErrInvalidLiteral)
	})

	t.Run("ExplicitBuilders", func(t *testing.T) {
		ints, err := CodecFor[int]()
		require.NoError(t, err)

		seq := SequenceOf(SequenceOf(ints))
		text, err := seq.Encode([][]int{{1}, {2, 3}})
		require.NoError(t, err)
		assert.Equal(t, "[[1], [2, 3]]", text)

		set := SetOf(ints)
		v, err := set.Decode("[2, 1]")
		require.NoError(t, err)
		assert.Len(t, v, 2)

		m := MappingOf(SetOf(ints))
		text, err = m.Encode(map[string]map[int]struct{}{"k": {5: {}}})
		require.NoError(t, err)
		assert.Equal(t, "{k: [5]}", text)
	})
}

// TestUnsupportedTypes tests codec resolution failures
func TestUnsupportedTypes(t *testing.T) {
	_, err := CodecFor[map[int]string]()
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = CodecFor[chan int]()
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = CodecFor[[]*int]()
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

type level int

const (
	levelLow level = iota
	levelHigh
)

type levelCodec struct{}

func (levelCodec) Decode(text string) (level, error) {
	switch text {
	case "low":
		return levelLow, nil
	case "high":
		return levelHigh, nil
	}
	return 0, fmt.Errorf("unknown level %q", text)
}

func (levelCodec) Encode(v level) (string, error) {
	switch v {
	case levelLow:
		return "low", nil
	case levelHigh:
		return "high", nil
	}
	return "", fmt.Errorf("unknown level %d", v)
}

// TestRegisterCodec tests application codecs alone and inside containers
func TestRegisterCodec(t *testing.T) {
	RegisterCodec[level](levelCodec{})

	t.Run("Direct", func(t *testing.T) {
		c, err := CodecFor[level]()
		require.NoError(t, err)
		assert.IsType(t, levelCodec{}, c)
		assert.Equal(t, "high", roundTrip(t, levelHigh))
	})

	t.Run("InsideContainers", func(t *testing.T) {
		assert.Equal(t, "[low, high]", roundTrip(t, []level{levelLow, levelHigh}))
		assert.Equal(t, "{db: high}", roundTrip(t, map[string]level{"db": levelHigh}))
	})

	t.Run("DecodeFailureIsCastError", func(t *testing.T) {
		c, err := CodecFor[[]level]()
		require.NoError(t, err)
		_, err = c.Decode("[low, extreme]")
		assert.ErrorIs(t, err, ErrInvalidLiteral)
	})

	t.Run("Variable", func(t *testing.T) {
		reg := New()
		v, err := Declare(reg, "log.levels", "levels per subsystem", map[string]level{"api": levelLow})
		require.NoError(t, err)

		require.NoError(t, v.SetValueString("{api: high, db: low}"))
		assert.Equal(t, map[string]level{"api": levelHigh, "db": levelLow}, v.Value())
	})
}
