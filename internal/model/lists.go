package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrIndexOutOfRange is returned by list edits addressing a missing item.
var ErrIndexOutOfRange = errors.New("index out of range")

// SubList names one of the sub-document lists of personal info.
type SubList string

const (
	LeadershipPoints SubList = "leadershipPoints"
	ProductPortfolio SubList = "productPortfolio"
	ExpertiseAreas   SubList = "expertiseAreas"
)

func ParseSubList(s string) (SubList, error) {
	switch l := SubList(s); l {
	case LeadershipPoints, ProductPortfolio, ExpertiseAreas:
		return l, nil
	}
	return "", fmt.Errorf("unknown list %q", s)
}

// The helpers below never write to the slice they are given.

func Append[T any](items []T, v T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, v)
}

func ReplaceAt[T any](items []T, i int, v T) ([]T, error) {
	if i < 0 || i >= len(items) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(items))
	}
	out := slices.Clone(items)
	out[i] = v
	return out, nil
}

func RemoveAt[T any](items []T, i int) ([]T, error) {
	if i < 0 || i >= len(items) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(items))
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), nil
}

// SplitSkills parses the comma separated skills input of an expertise area.
func SplitSkills(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinSkills is the inverse used to prefill the skills input.
func JoinSkills(skills []string) string {
	return strings.Join(skills, ", ")
}
