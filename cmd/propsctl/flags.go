package main

import "strconv"

// optionalFloat is a flag that distinguishes "unset" from zero.
type optionalFloat struct {
	set   bool
	value float64
}

func (f *optionalFloat) String() string {
	if f == nil || !f.set {
		return ""
	}
	return strconv.FormatFloat(f.value, 'f', -1, 64)
}

func (f *optionalFloat) Set(raw string) error {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	f.value, f.set = v, true
	return nil
}

func (f *optionalFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

// optionalInt holds an American price that may be omitted.
type optionalInt struct {
	set   bool
	value int
}

func (f *optionalInt) String() string {
	if f == nil || !f.set {
		return ""
	}
	return strconv.Itoa(f.value)
}

func (f *optionalInt) Set(raw string) error {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	f.value, f.set = v, true
	return nil
}

func (f *optionalInt) ptr() *int {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}
