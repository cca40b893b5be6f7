package utils

// StringSet is a set of unique strings.
type StringSet struct {
	m map[string]struct{}
}

func NewStringSet(strings ...string) *StringSet {
	res := &StringSet{
		m: map[string]struct{}{},
	}
	for _, s := range strings {
		res.Add(s)
	}
	return res
}

// Add adds a string to the set. If string is already in the set, it has no effect.
func (s *StringSet) Add(str string) {
	s.m[str] = struct{}{}
}

// Contains reports whether str is in the set.
func (s *StringSet) Contains(str string) bool {
	_, ok := s.m[str]
	return ok
}
