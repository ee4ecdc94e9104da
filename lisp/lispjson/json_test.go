package lispjson

import (
	"testing"

	"github.com/halcyon-lang/halcyon/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T, config ...lisp.Config) *lisp.LEnv {
	t.Helper()
	env := lisp.NewEnv(nil)
	lerr := lisp.InitializeUserEnv(env, config...)
	if err := lisp.GoError(lerr); err != nil {
		t.Fatal(err)
	}
	return env
}

func TestLoadScalars(t *testing.T) {
	env := testEnv(t)
	v := Load(env, []byte(`null`))
	assert.True(t, v.IsNil())
	v = Load(env, []byte(`true`))
	require.Equal(t, lisp.LBool, v.Type)
	assert.True(t, v.IsTruthy())
	v = Load(env, []byte(`false`))
	require.Equal(t, lisp.LBool, v.Type)
	assert.False(t, v.IsTruthy())
	v = Load(env, []byte(`-4`))
	require.Equal(t, lisp.LInt, v.Type)
	assert.Equal(t, int64(-4), v.Int)
	v = Load(env, []byte(`2.5`))
	require.Equal(t, lisp.LFloat, v.Type)
	assert.Equal(t, 2.5, v.Float)
	// An exponent forces a float even when the value is integral.
	v = Load(env, []byte(`1e3`))
	require.Equal(t, lisp.LFloat, v.Type)
	assert.Equal(t, 1000.0, v.Float)
	v = Load(env, []byte(`"héllo"`))
	require.Equal(t, lisp.LString, v.Type)
	assert.Equal(t, "héllo", v.Str)
}

func TestLoadIntOverflow(t *testing.T) {
	env := testEnv(t)
	v := Load(env, []byte(`9223372036854775808`))
	require.Equal(t, lisp.LFloat, v.Type)
}

func TestLoadArray(t *testing.T) {
	env := testEnv(t)
	v := Load(env, []byte(`[1, [2, "x"], null]`))
	require.Equal(t, lisp.LVector, v.Type)
	assert.Equal(t, `[1 [2 "x"] nil]`, v.String())
	v = Load(env, []byte(`[]`))
	require.Equal(t, lisp.LVector, v.Type)
	assert.Equal(t, `[]`, v.String())
}

func TestLoadObject(t *testing.T) {
	env := testEnv(t)
	// Entries keep the document's own order.
	v := Load(env, []byte(`{"b": 2, "a": 1, "c": [true]}`))
	require.Equal(t, lisp.LArrayMap, v.Type)
	assert.Equal(t, `{"b" 2, "a" 1, "c" [true]}`, v.String())

	v = Load(env, []byte(`{"a": 1, "a": 2}`))
	assert.Equal(t, `{"a" 2}`, v.String())

	v = Load(env, []byte(`{}`))
	require.Equal(t, lisp.LArrayMap, v.Type)
	assert.Equal(t, `{}`, v.String())
}

func TestLoadObjectKeywordKeys(t *testing.T) {
	env := testEnv(t)
	s := &Serializer{KeywordKeys: true}
	v := s.Load(env, []byte(`{"a": {"b": 1}}`))
	require.Equal(t, lisp.LArrayMap, v.Type)
	assert.Equal(t, `{:a {:b 1}}`, v.String())
}

func TestLoadObjectPromotion(t *testing.T) {
	env := testEnv(t)
	v := Load(env, []byte(`{"k0":0,"k1":1,"k2":2,"k3":3,"k4":4,"k5":5,"k6":6,"k7":7,"k8":8,"k9":9}`))
	require.Equal(t, lisp.LHashMap, v.Type)
	n := lisp.Count(env, v)
	require.Equal(t, lisp.LInt, n.Type)
	assert.Equal(t, int64(10), n.Int)
}

func TestLoadErrors(t *testing.T) {
	env := testEnv(t)
	v := Load(env, []byte(``))
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, "unexpected end of json input", lisp.GoError(v).Error())
	v = Load(env, []byte(`1 2`))
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, "unexpected data after json value", lisp.GoError(v).Error())
	for _, b := range []string{`{"a":`, `tru`, `[1,]`, `{1: 2}`} {
		v = Load(env, []byte(b))
		assert.Equal(t, lisp.LError, v.Type, "input: %s", b)
	}
}

func TestDumpScalars(t *testing.T) {
	env := testEnv(t)
	for _, test := range []struct {
		v    *lisp.LVal
		json string
	}{
		{lisp.Nil(), `null`},
		{lisp.Bool(true), `true`},
		{lisp.Bool(false), `false`},
		{lisp.Int(7), `7`},
		{lisp.Float(2.5), `2.5`},
		{lisp.String("hi"), `"hi"`},
		{lisp.Char('a'), `"a"`},
		{lisp.Keyword("a"), `"a"`},
		{lisp.QKeyword("m", "k"), `"m/k"`},
		{lisp.Symbol("x"), `"x"`},
	} {
		b, err := Dump(env, test.v)
		require.NoError(t, err, "value: %v", test.v)
		assert.Equal(t, test.json, string(b), "value: %v", test.v)
	}
}

func TestDumpCollections(t *testing.T) {
	env := testEnv(t)
	b, err := Dump(env, lisp.List([]*lisp.LVal{lisp.Int(1), lisp.Int(2)}))
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(b))

	b, err = Dump(env, lisp.Vector(nil))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(b))

	m := lisp.ArrayMap()
	m = lisp.MapAssoc(env, m, lisp.Keyword("b"), lisp.Vector([]*lisp.LVal{lisp.Int(2)}))
	m = lisp.MapAssoc(env, m, lisp.Keyword("a"), lisp.Int(1))
	b, err = Dump(env, m)
	require.NoError(t, err)
	// Marshal writes object keys in sorted order.
	assert.Equal(t, `{"a":1,"b":[2]}`, string(b))

	b, err = Dump(env, lisp.ArrayMap())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}

func TestDumpLazyMaterializes(t *testing.T) {
	env := testEnv(t)
	b, err := Dump(env, lisp.RangeSeq(env, lisp.Int(0), lisp.Int(5), lisp.Int(1)))
	require.NoError(t, err)
	assert.Equal(t, `[0,1,2,3,4]`, string(b))

	b, err = Dump(env, lisp.Cons(lisp.Int(0), lisp.RangeSeq(env, lisp.Int(1), lisp.Int(3), lisp.Int(1))))
	require.NoError(t, err)
	assert.Equal(t, `[0,1,2]`, string(b))
}

func TestDumpEagerLimit(t *testing.T) {
	env := testEnv(t, lisp.WithEagerLimit(64))
	_, err := Dump(env, lisp.RepeatSeq(env, lisp.Int(1)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestDumpUnsupported(t *testing.T) {
	env := testEnv(t)
	fn := lisp.Fun("test:id", func(env *lisp.LEnv, args *lisp.LVal) *lisp.LVal {
		return args.Cells[0]
	})
	_, err := Dump(env, fn)
	require.Error(t, err)
	assert.Equal(t, "type cannot be converted to json: function", err.Error())

	_, err = Dump(env, lisp.Reduced(lisp.Int(1)))
	require.Error(t, err)
	assert.Equal(t, "type cannot be converted to json: reduced", err.Error())

	m := lisp.MapAssoc(env, lisp.ArrayMap(), lisp.Int(1), lisp.Int(2))
	_, err = Dump(env, m)
	require.Error(t, err)
	assert.Equal(t, "json object key is not a string: int", err.Error())
}

func TestRoundTrip(t *testing.T) {
	env := testEnv(t)
	m := lisp.ArrayMap()
	m = lisp.MapAssoc(env, m, lisp.String("a"), lisp.Vector([]*lisp.LVal{lisp.Int(1), lisp.Float(2.5)}))
	m = lisp.MapAssoc(env, m, lisp.String("b"), lisp.Nil())
	b, err := Dump(env, m)
	require.NoError(t, err)
	back := Load(env, b)
	require.NotEqual(t, lisp.LError, back.Type)
	assert.True(t, lisp.Equal(m, back), "loaded: %v", back)
}
