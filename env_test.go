// FILE: lixenwraith/envchain/env_test.go
package envchain

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quietLogger discards diagnostics so test output stays clean
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEnv(values map[string]string) *Env {
	return FromMap(values, WithLogger(quietLogger()))
}

// TestFallbackContract tests Default and Required on a missing key
func TestFallbackContract(t *testing.T) {
	env := testEnv(map[string]string{"PRESENT": "value"})

	t.Run("MissingWithoutOptions", func(t *testing.T) {
		v, ok, err := env.String("absent")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("Default", func(t *testing.T) {
		v, ok, err := env.String("absent", Default("fallback"))
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "fallback", v)
	})

	t.Run("DefaultNotStripped", func(t *testing.T) {
		v, _, err := env.String("absent", Default("  padded  "))
		assert.NoError(t, err)
		assert.Equal(t, "  padded  ", v)
	})

	t.Run("Required", func(t *testing.T) {
		_, ok, err := env.Int("absent", Required[int]())
		assert.False(t, ok)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissing)

		var cfgErr *Error
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "absent", cfgErr.Key)
	})

	t.Run("DefaultSatisfiesRequired", func(t *testing.T) {
		v, ok, err := env.Int("absent", Default(7), Required[int]())
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 7, v)
	})

	t.Run("PresentIgnoresDefault", func(t *testing.T) {
		v, ok, err := env.String("present", Default("fallback"), Required[string]())
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "value", v)
	})

	t.Run("EmptyKey", func(t *testing.T) {
		_, _, err := env.String("")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

// TestChainResolution tests precedence and blank handling across layers
func TestChainResolution(t *testing.T) {
	bottom := NewFlat("bottom", map[string]string{
		"NAME":  "bottom-name",
		"PORT":  "1",
		"EXTRA": "bottom-extra",
	}, nil)
	top := NewFlat("top", map[string]string{
		"NAME": "top-name",
		"PORT": "   ",
	}, bottom)
	env := New(top, WithLogger(quietLogger()))

	t.Run("HigherLayerWins", func(t *testing.T) {
		v, _, err := env.String("name")
		require.NoError(t, err)
		assert.Equal(t, "top-name", v)
	})

	t.Run("BlankFallsThrough", func(t *testing.T) {
		v, ok, err := env.Int("port")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, v)
	})

	t.Run("MissingFallsThrough", func(t *testing.T) {
		v, _, err := env.String("extra")
		require.NoError(t, err)
		assert.Equal(t, "bottom-extra", v)
	})

	t.Run("BlankEverywhereIsMissing", func(t *testing.T) {
		env := testEnv(map[string]string{"BLANK": " \t "})
		v, ok, err := env.String("blank", Default("d"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "d", v)

		_, _, err = env.String("blank", Required[string]())
		assert.ErrorIs(t, err, ErrMissing)
	})

	t.Run("Idempotent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			v, ok, err := env.String("name")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "top-name", v)
		}
	})

	t.Run("ConcurrentReads", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, _, err := env.MustScope("unused").String("name", Default("x"))
				assert.NoError(t, err)
				assert.Equal(t, "x", v)
				n, _, err := env.Int("port")
				assert.NoError(t, err)
				assert.Equal(t, 1, n)
			}()
		}
		wg.Wait()
	})
}

// TestScalarGetters tests string, bool and int coercion
func TestScalarGetters(t *testing.T) {
	env := testEnv(map[string]string{
		"NAME":      "  alice  ",
		"YES":       "yes",
		"TRUE":      "true",
		"TITLE":     "True",
		"UPPER":     "TRUE",
		"ONE":       "1",
		"NO":        "no",
		"PORT":      " 8080 ",
		"NEGATIVE":  "-7",
		"FLOAT":     "4.2",
		"WORD":      "abc",
		"POOL_SIZE": "20",
	})

	t.Run("String", func(t *testing.T) {
		v, ok, err := env.String("name")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "alice", v)
	})

	t.Run("Bool", func(t *testing.T) {
		for key, expected := range map[string]bool{
			"yes": true, "true": true, "title": true,
			"upper": false, "one": false, "no": false,
		} {
			v, ok, err := env.Bool(key)
			require.NoError(t, err, key)
			assert.True(t, ok, key)
			assert.Equal(t, expected, v, key)
		}
	})

	t.Run("Int", func(t *testing.T) {
		v, ok, err := env.Int("port")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 8080, v)

		v, _, err = env.Int("negative")
		require.NoError(t, err)
		assert.Equal(t, -7, v)

		v, _, err = env.Int("pool-size")
		require.NoError(t, err)
		assert.Equal(t, 20, v)
	})

	t.Run("IntMalformed", func(t *testing.T) {
		_, ok, err := env.Int("float")
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.Contains(t, err.Error(), `invalid integer "4.2"`)

		_, _, err = env.Int("word")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("MalformedIgnoresDefault", func(t *testing.T) {
		_, _, err := env.Int("word", Default(1))
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

// TestListGetters tests comma-separated list splitting
func TestListGetters(t *testing.T) {
	env := testEnv(map[string]string{
		"NAMES":      "a, b,,c ",
		"SPACED":     "a, bc ,d",
		"COMMA":      ",",
		"SINGLE":     "only",
		"PORTS":      "80, 443,8080",
		"BAD_INTS":   "1,two,3",
		"NUMS":       "1,,2, ",
		"EMPTY_LIST": "",
		"BLANK_LIST": "  ",
	})

	t.Run("StringList", func(t *testing.T) {
		v, ok, err := env.StringList("names")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"a", "b", "c"}, v)

		v, _, err = env.StringList("single")
		require.NoError(t, err)
		assert.Equal(t, []string{"only"}, v)

		v, _, err = env.StringList("spaced")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "bc", "d"}, v)
	})

	t.Run("BlankListIsMissing", func(t *testing.T) {
		for _, key := range []string{"empty-list", "blank-list"} {
			names, ok, err := env.StringList(key)
			require.NoError(t, err)
			assert.False(t, ok, key)
			assert.Nil(t, names, key)

			names, ok, err = env.StringList(key, Default([]string{"fallback"}))
			require.NoError(t, err)
			assert.True(t, ok, key)
			assert.Equal(t, []string{"fallback"}, names, key)

			nums, ok, err := env.IntList(key)
			require.NoError(t, err)
			assert.False(t, ok, key)
			assert.Nil(t, nums, key)

			nums, ok, err = env.IntList(key, Default([]int{7}))
			require.NoError(t, err)
			assert.True(t, ok, key)
			assert.Equal(t, []int{7}, nums, key)

			_, _, err = env.IntList(key, Required[[]int]())
			assert.ErrorIs(t, err, ErrMissing, key)
		}
	})

	t.Run("OnlySeparators", func(t *testing.T) {
		v, ok, err := env.StringList("comma", Default([]string{"default"}))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, v)
		assert.NotNil(t, v)
	})

	t.Run("IntList", func(t *testing.T) {
		v, ok, err := env.IntList("ports")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []int{80, 443, 8080}, v)

		v, _, err = env.IntList("nums")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, v)
	})

	t.Run("IntListAtomic", func(t *testing.T) {
		v, ok, err := env.IntList("bad-ints")
		assert.False(t, ok)
		assert.Nil(t, v)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.Contains(t, err.Error(), `"two"`)
	})

	t.Run("MissingList", func(t *testing.T) {
		v, ok, err := env.IntList("absent", Default([]int{1}))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []int{1}, v)
	})
}

// TestTransforms tests caller-supplied conversions
func TestTransforms(t *testing.T) {
	env := testEnv(map[string]string{
		"RATIO":  " 0.75 ",
		"BAD":    "x",
		"RATIOS": "0.5, 1.5",
	})
	parseFloat := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

	t.Run("StringAs", func(t *testing.T) {
		v, ok, err := StringAs(env, "ratio", parseFloat)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 0.75, v)
	})

	t.Run("TransformError", func(t *testing.T) {
		_, _, err := StringAs(env, "bad", parseFloat)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.ErrorIs(t, err, strconv.ErrSyntax)
	})

	t.Run("NotCalledForDefault", func(t *testing.T) {
		calls := 0
		fn := func(s string) (int, error) {
			calls++
			return len(s), nil
		}

		v, ok, err := StringAs(env, "absent", fn, Default(99))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 99, v)

		_, ok, err = StringAs(env, "absent", fn)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, calls)
	})

	t.Run("StringListAs", func(t *testing.T) {
		v, ok, err := StringListAs(env, "ratios", parseFloat)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []float64{0.5, 1.5}, v)

		_, _, err = StringListAs(env, "bad", parseFloat)
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

// TestDateTimeGetters tests date, time and datetime parsing with awareness checks
func TestDateTimeGetters(t *testing.T) {
	env := testEnv(map[string]string{
		"DAY":        "2024-02-29",
		"BAD_DAY":    "2024-13-01",
		"CLOCK":      "12:34",
		"CLOCK_FRAC": "12:34:56.5",
		"CLOCK_TZ":   "12:00+01:00",
		"AWARE":      "2024-01-02T03:04:05Z",
		"AWARE_ZERO": "2024-01-02T03:04:05+00:00",
		"OFFSET":     "2024-01-02T03:04:05+05:30",
		"NAIVE":      "2024-01-02 03:04:05",
		"BARE_DATE":  "2024-01-02",
		"GARBAGE":    "yesterday",
	})

	t.Run("Date", func(t *testing.T) {
		v, ok, err := env.Date("day")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, civil.Date{Year: 2024, Month: time.February, Day: 29}, v)

		_, _, err = env.Date("bad-day")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Time", func(t *testing.T) {
		v, ok, err := env.Time("clock")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, civil.Time{Hour: 12, Minute: 34}, v)

		v, _, err = env.Time("clock-frac")
		require.NoError(t, err)
		assert.Equal(t, civil.Time{Hour: 12, Minute: 34, Second: 56, Nanosecond: 500000000}, v)
	})

	t.Run("TimeWithOffset", func(t *testing.T) {
		_, _, err := env.Time("clock-tz")
		assert.ErrorIs(t, err, ErrMalformed)

		v, ok, err := env.Time("clock-tz", Default(civil.Time{Hour: 8}))
		assert.ErrorIs(t, err, ErrMalformed)
		assert.False(t, ok)
		assert.Equal(t, civil.Time{}, v)
	})

	t.Run("AwareDateTime", func(t *testing.T) {
		v, ok, err := env.DateTime("aware", false)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Equal(v))
		assert.False(t, IsNaive(v))

		v, _, err = env.DateTime("offset", false)
		require.NoError(t, err)
		_, offset := v.Zone()
		assert.Equal(t, 5*3600+30*60, offset)
	})

	t.Run("NaiveDateTime", func(t *testing.T) {
		v, ok, err := env.DateTime("naive", true)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, IsNaive(v))
		assert.Equal(t, NaiveDate(2024, 1, 2, 3, 4, 5, 0), v)

		v, _, err = env.DateTime("bare-date", true)
		require.NoError(t, err)
		assert.Equal(t, NaiveDate(2024, 1, 2, 0, 0, 0, 0), v)
	})

	t.Run("AwarenessMismatch", func(t *testing.T) {
		_, _, err := env.DateTime("aware", true)
		assert.ErrorIs(t, err, ErrAwareness)

		// A zero offset is still an offset
		_, _, err = env.DateTime("aware-zero", true)
		assert.ErrorIs(t, err, ErrAwareness)

		_, _, err = env.DateTime("naive", false)
		assert.ErrorIs(t, err, ErrAwareness)
	})

	t.Run("DefaultAwareness", func(t *testing.T) {
		aware := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		naive := NaiveDate(2024, 1, 1, 0, 0, 0, 0)

		v, ok, err := env.DateTime("absent", false, Default(aware))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, aware, v)

		_, _, err = env.DateTime("absent", true, Default(aware))
		assert.ErrorIs(t, err, ErrAwareness)

		// Checked even when the key is present
		_, _, err = env.DateTime("naive", true, Default(aware))
		assert.ErrorIs(t, err, ErrAwareness)

		v, _, err = env.DateTime("absent", true, Default(naive))
		require.NoError(t, err)
		assert.Equal(t, naive, v)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, _, err := env.DateTime("garbage", false)
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

// TestScope tests scoped views of an Env
func TestScope(t *testing.T) {
	env := testEnv(map[string]string{
		"ALPHA__BETA__GAMMA": "deep",
		"SERVER__PORT":       "8080",
	})

	t.Run("Nested", func(t *testing.T) {
		beta, err := env.MustScope("alpha").Scope("beta")
		require.NoError(t, err)

		v, ok, err := beta.String("gamma")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "deep", v)

		direct, _, _ := env.String("alpha.beta.gamma")
		assert.Equal(t, direct, v)
	})

	t.Run("ReceiverUnchanged", func(t *testing.T) {
		_ = env.MustScope("server")
		v, _, err := env.Int("server.port")
		require.NoError(t, err)
		assert.Equal(t, 8080, v)
	})

	t.Run("ErrorsCarryFullKey", func(t *testing.T) {
		_, _, err := env.MustScope("server").String("host", Required[string]())
		var cfgErr *Error
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "server.host", cfgErr.Key)
		assert.Contains(t, err.Error(), `"server.host"`)
	})

	t.Run("EmptySegment", func(t *testing.T) {
		_, err := env.Scope("")
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.Panics(t, func() { env.MustScope("") })
	})

	t.Run("OneSegmentPerStep", func(t *testing.T) {
		_, err := env.Scope("alpha.beta")
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.Panics(t, func() { env.MustScope("alpha.beta") })
	})

	t.Run("Layers", func(t *testing.T) {
		assert.Equal(t, []string{"map", "empty"}, env.Layers())
		assert.Equal(t, []string{"map/server", "empty/server"}, env.MustScope("server").Layers())
	})
}

// TestKebabWarning tests the diagnostic for keys outside kebab-case
func TestKebabWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	env := FromMap(map[string]string{"SOME_KEY": "v", "GOOD_KEY": "v"}, WithLogger(logger))

	v, ok, err := env.String("Some_Key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Contains(t, buf.String(), "keys should use kebab-case")
	assert.Contains(t, buf.String(), "Some_Key")

	buf.Reset()
	_, _, err = env.String("good-key")
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	buf.Reset()
	_, _, err = env.MustScope("Outer").String("inner")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Outer.inner")
}
