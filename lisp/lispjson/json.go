// Package lispjson converts lisp values to and from JSON for host
// programs.  Objects decode to maps in document order, arrays to vectors,
// and numbers to ints when they have no fractional part.  Encoding
// materializes lazy sequences subject to the runtime's eager limit.
package lispjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/halcyon-lang/halcyon/lisp"
)

// DefaultSerializer is the Serializer used by the exported functions Load
// and Dump.  It decodes object keys as strings.
var DefaultSerializer = &Serializer{}

// Dump serializes the structure of v as a JSON formatted byte slice.
func Dump(env *lisp.LEnv, v *lisp.LVal) ([]byte, error) {
	return DefaultSerializer.Dump(env, v)
}

// Load parses b as JSON and returns an equivalent lisp value.
func Load(env *lisp.LEnv, b []byte) *lisp.LVal {
	return DefaultSerializer.Load(env, b)
}

// Serializer defines JSON conversion rules for lisp values.
type Serializer struct {
	// KeywordKeys decodes object keys as keywords instead of strings.
	KeywordKeys bool
}

// Load parses b and returns a lisp value representing its structure.  A
// malformed document or trailing data after the first value is an error
// value.
func (s *Serializer) Load(env *lisp.LEnv, b []byte) *lisp.LVal {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	v := s.decodeValue(env, dec)
	if v.Type == lisp.LError {
		return v
	}
	if _, err := dec.Token(); err != io.EOF {
		return lisp.Errorf("unexpected data after json value")
	}
	return v
}

func (s *Serializer) decodeValue(env *lisp.LEnv, dec *json.Decoder) *lisp.LVal {
	tok, err := dec.Token()
	if err == io.EOF {
		return lisp.Errorf("unexpected end of json input")
	}
	if err != nil {
		return lisp.Error(err)
	}
	return s.decodeToken(env, dec, tok)
}

func (s *Serializer) decodeToken(env *lisp.LEnv, dec *json.Decoder, tok json.Token) *lisp.LVal {
	switch tok := tok.(type) {
	case nil:
		return lisp.Nil()
	case bool:
		return lisp.Bool(tok)
	case string:
		return lisp.String(tok)
	case json.Number:
		if i, err := tok.Int64(); err == nil {
			return lisp.Int(i)
		}
		f, err := tok.Float64()
		if err != nil {
			return lisp.Error(err)
		}
		return lisp.Float(f)
	case json.Delim:
		switch tok {
		case '[':
			return s.decodeArray(env, dec)
		case '{':
			return s.decodeObject(env, dec)
		}
	}
	return lisp.Errorf("unable to load json token: %v", tok)
}

func (s *Serializer) decodeArray(env *lisp.LEnv, dec *json.Decoder) *lisp.LVal {
	var cells []*lisp.LVal
	for dec.More() {
		v := s.decodeValue(env, dec)
		if v.Type == lisp.LError {
			return v
		}
		cells = append(cells, v)
	}
	if _, err := dec.Token(); err != nil {
		return lisp.Error(err)
	}
	return lisp.Vector(cells)
}

func (s *Serializer) decodeObject(env *lisp.LEnv, dec *json.Decoder) *lisp.LVal {
	m := lisp.ArrayMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return lisp.Error(err)
		}
		name, ok := tok.(string)
		if !ok {
			return lisp.Errorf("json object key is not a string: %v", tok)
		}
		k := lisp.String(name)
		if s.KeywordKeys {
			k = lisp.Keyword(name)
		}
		v := s.decodeValue(env, dec)
		if v.Type == lisp.LError {
			return v
		}
		m = lisp.MapAssoc(env, m, k, v)
		if m.Type == lisp.LError {
			return m
		}
	}
	if _, err := dec.Token(); err != nil {
		return lisp.Error(err)
	}
	return m
}

// Dump serializes v as JSON and returns any error.  Sequences, including
// lazy ones, become arrays, maps become objects with string keys, and sets
// become arrays of their members.
func (s *Serializer) Dump(env *lisp.LEnv, v *lisp.LVal) ([]byte, error) {
	x, err := s.goValue(env, v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(x)
}

func (s *Serializer) goValue(env *lisp.LEnv, v *lisp.LVal) (interface{}, error) {
	switch v.Type {
	case lisp.LNil:
		return nil, nil
	case lisp.LBool:
		return v.IsTruthy(), nil
	case lisp.LInt:
		return v.Int, nil
	case lisp.LFloat:
		return v.Float, nil
	case lisp.LChar:
		return string(rune(v.Int)), nil
	case lisp.LString:
		return v.Str, nil
	case lisp.LSymbol, lisp.LKeyword:
		return qualifiedName(v), nil
	case lisp.LList, lisp.LVector, lisp.LCons, lisp.LLazySeq, lisp.LChunkedCons, lisp.LHashSet:
		return s.goSlice(env, v)
	case lisp.LArrayMap, lisp.LHashMap:
		return s.goMap(env, v)
	}
	return nil, fmt.Errorf("type cannot be converted to json: %v", v.Type)
}

func (s *Serializer) goSlice(env *lisp.LEnv, v *lisp.LVal) ([]interface{}, error) {
	cells, lerr := lisp.SeqCells(env, v)
	if lerr != nil {
		return nil, lisp.GoError(lerr)
	}
	vs := make([]interface{}, len(cells))
	for i := range cells {
		x, err := s.goValue(env, cells[i])
		if err != nil {
			return nil, err
		}
		vs[i] = x
	}
	return vs, nil
}

func (s *Serializer) goMap(env *lisp.LEnv, v *lisp.LVal) (map[string]interface{}, error) {
	entries, lerr := lisp.SeqCells(env, v)
	if lerr != nil {
		return nil, lisp.GoError(lerr)
	}
	m := make(map[string]interface{}, len(entries))
	for _, pair := range entries {
		k, err := goMapKey(pair.Cells[0])
		if err != nil {
			return nil, err
		}
		x, err := s.goValue(env, pair.Cells[1])
		if err != nil {
			return nil, err
		}
		m[k] = x
	}
	return m, nil
}

func goMapKey(k *lisp.LVal) (string, error) {
	switch k.Type {
	case lisp.LString:
		return k.Str, nil
	case lisp.LSymbol, lisp.LKeyword:
		return qualifiedName(k), nil
	}
	return "", fmt.Errorf("json object key is not a string: %v", k.Type)
}

func qualifiedName(v *lisp.LVal) string {
	if v.NS != "" {
		return v.NS + "/" + v.Str
	}
	return v.Str
}
