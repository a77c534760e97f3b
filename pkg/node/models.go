package node

import (
	"math"
	"strconv"
	"time"

	"github.com/lioia/corpus-pagerank/pkg/pagerank"
	"golang.org/x/xerrors"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrBadRequest wraps every error caused by a malformed ranking request.
var ErrBadRequest = xerrors.New("bad request")

// Request is one ranking job. Nil parameters fall back to the defaults of
// pagerank.DefaultOptions; a parameter that is set is used as given, even when
// it is zero. Seed is always taken as given.
type Request struct {
	ID        string              `json:"id,omitempty"`
	Method    string              `json:"method,omitempty"`
	Damping   *float64            `json:"damping,omitempty"`
	Samples   *int                `json:"samples,omitempty"`
	Tolerance *float64            `json:"tolerance,omitempty"`
	MaxSweeps *int                `json:"max_sweeps,omitempty"`
	Seed      int64               `json:"seed,omitempty"`
	Runs      int                 `json:"runs,omitempty"`
	Links     map[string][]string `json:"links"`
}

// Options resolves the estimator parameters of r.
func (r Request) Options() pagerank.Options {
	opts := pagerank.DefaultOptions()
	if r.Damping != nil {
		opts.Damping = *r.Damping
	}
	if r.Samples != nil {
		opts.Samples = *r.Samples
	}
	if r.Tolerance != nil {
		opts.Tolerance = *r.Tolerance
	}
	if r.MaxSweeps != nil {
		opts.MaxSweeps = *r.MaxSweeps
	}
	opts.Seed = r.Seed
	return opts
}

// Struct encodes r as a protobuf Struct for gRPC and queue transport. Unset
// parameters are left out; the seed travels as a decimal string since Struct
// numbers are float64.
func (r Request) Struct() (*structpb.Struct, error) {
	links := make(map[string]interface{}, len(r.Links))
	for page, targets := range r.Links {
		list := make([]interface{}, len(targets))
		for i, t := range targets {
			list[i] = t
		}
		links[page] = list
	}
	m := map[string]interface{}{
		"id":     r.ID,
		"method": r.Method,
		"seed":   strconv.FormatInt(r.Seed, 10),
		"runs":   r.Runs,
		"links":  links,
	}
	if r.Damping != nil {
		m["damping"] = *r.Damping
	}
	if r.Samples != nil {
		m["samples"] = *r.Samples
	}
	if r.Tolerance != nil {
		m["tolerance"] = *r.Tolerance
	}
	if r.MaxSweeps != nil {
		m["max_sweeps"] = *r.MaxSweeps
	}
	return structpb.NewStruct(m)
}

// RequestFromStruct decodes a Request encoded by Request.Struct. Counts must
// be whole numbers.
func RequestFromStruct(s *structpb.Struct) (Request, error) {
	var r Request
	if s == nil {
		return r, xerrors.Errorf("empty message: %w", ErrBadRequest)
	}
	f := fields(s.AsMap())
	r.ID = f.str("id")
	r.Method = f.str("method")
	r.Damping = f.optNum("damping")
	r.Samples = f.optCount("samples")
	r.Tolerance = f.optNum("tolerance")
	r.MaxSweeps = f.optCount("max_sweeps")
	r.Seed = f.seed("seed")
	if runs := f.optCount("runs"); runs != nil {
		r.Runs = *runs
	}
	r.Links = f.links("links")
	if f.err != nil {
		return Request{}, f.err
	}
	return r, nil
}

// Struct encodes r as a protobuf Struct.
func (r *Response) Struct() (*structpb.Struct, error) {
	ranks := make(map[string]interface{}, len(r.Ranks))
	for page, v := range r.Ranks {
		ranks[page] = v
	}
	return structpb.NewStruct(map[string]interface{}{
		"id":         r.ID,
		"method":     r.Method,
		"ranks":      ranks,
		"steps":      r.Steps,
		"runs":       r.Runs,
		"elapsed_ns": float64(r.Elapsed),
		"error":      r.Error,
	})
}

// ResponseFromStruct decodes a Response encoded by Response.Struct.
func ResponseFromStruct(s *structpb.Struct) (*Response, error) {
	if s == nil {
		return nil, xerrors.New("empty response")
	}
	f := fields(s.AsMap())
	r := &Response{
		ID:      f.str("id"),
		Method:  f.str("method"),
		Ranks:   f.ranks("ranks"),
		Steps:   int(f.num("steps")),
		Runs:    int(f.num("runs")),
		Elapsed: time.Duration(f.num("elapsed_ns")),
		Error:   f.str("error"),
	}
	if f.err != nil {
		return nil, f.err
	}
	return r, nil
}

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// fieldReader reads typed values out of a decoded Struct, remembering the first
// type mismatch. Missing keys yield zero values.
type fieldReader struct {
	m   map[string]interface{}
	err error
}

func fields(m map[string]interface{}) *fieldReader { return &fieldReader{m: m} }

func (f *fieldReader) fail(key, want string) {
	if f.err == nil {
		f.err = xerrors.Errorf("field %q is not a %s: %w", key, want, ErrBadRequest)
	}
}

func (f *fieldReader) str(key string) string {
	v, ok := f.m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		f.fail(key, "string")
	}
	return s
}

func (f *fieldReader) num(key string) float64 {
	v, ok := f.m[key]
	if !ok || v == nil {
		return 0
	}
	n, ok := v.(float64)
	if !ok {
		f.fail(key, "number")
	}
	return n
}

func (f *fieldReader) optNum(key string) *float64 {
	if v, ok := f.m[key]; !ok || v == nil {
		return nil
	}
	n := f.num(key)
	return &n
}

// optCount reads a whole number that fits an int.
func (f *fieldReader) optCount(key string) *int {
	if v, ok := f.m[key]; !ok || v == nil {
		return nil
	}
	n := f.num(key)
	if n != math.Trunc(n) || math.Abs(n) > maxExactInt {
		f.fail(key, "whole number")
		return nil
	}
	count := int(n)
	return &count
}

// seed reads a decimal string. Plain numbers are accepted while they are
// exact.
func (f *fieldReader) seed(key string) int64 {
	v, ok := f.m[key]
	if !ok || v == nil {
		return 0
	}
	switch s := v.(type) {
	case string:
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			f.fail(key, "64-bit integer")
		}
		return seed
	case float64:
		if s != math.Trunc(s) || math.Abs(s) > maxExactInt {
			f.fail(key, "64-bit integer")
			return 0
		}
		return int64(s)
	}
	f.fail(key, "64-bit integer")
	return 0
}

func (f *fieldReader) links(key string) map[string][]string {
	v, ok := f.m[key]
	if !ok || v == nil {
		return nil
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		f.fail(key, "page map")
		return nil
	}
	links := make(map[string][]string, len(raw))
	for page, targets := range raw {
		list, ok := targets.([]interface{})
		if !ok && targets != nil {
			f.fail(key+"."+page, "list")
			return nil
		}
		out := make([]string, 0, len(list))
		for _, t := range list {
			s, ok := t.(string)
			if !ok {
				f.fail(key+"."+page, "list of strings")
				return nil
			}
			out = append(out, s)
		}
		links[page] = out
	}
	return links
}

func (f *fieldReader) ranks(key string) map[string]float64 {
	v, ok := f.m[key]
	if !ok || v == nil {
		return nil
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		f.fail(key, "rank map")
		return nil
	}
	ranks := make(map[string]float64, len(raw))
	for page, r := range raw {
		n, ok := r.(float64)
		if !ok {
			f.fail(key+"."+page, "number")
			return nil
		}
		ranks[page] = n
	}
	return ranks
}
