package model

import "slices"

// BanList is the exclusion set. Tokens are unique and kept in insertion order
// for display; membership is an exact string match.
type BanList struct {
	tokens []string
	index  map[string]struct{}
}

// NewBanList creates a ban list holding the given tokens. Duplicates are dropped.
func NewBanList(tokens ...string) *BanList {
	b := &BanList{index: make(map[string]struct{}, len(tokens))}
	for _, t := range tokens {
		b.Add(t)
	}
	return b
}

// Add inserts token and reports whether the list changed
func (b *BanList) Add(token string) bool {
	if b.index == nil {
		b.index = make(map[string]struct{})
	}
	if _, ok := b.index[token]; ok {
		return false
	}
	b.index[token] = struct{}{}
	b.tokens = append(b.tokens, token)
	return true
}

// Remove deletes token and reports whether the list changed
func (b *BanList) Remove(token string) bool {
	if _, ok := b.index[token]; !ok {
		return false
	}
	delete(b.index, token)
	b.tokens = slices.DeleteFunc(b.tokens, func(t string) bool { return t == token })
	return true
}

// Contains reports whether token is banned. A nil list bans nothing.
func (b *BanList) Contains(token string) bool {
	if b == nil {
		return false
	}
	_, ok := b.index[token]
	return ok
}

// Tokens returns a copy of the banned tokens in insertion order
func (b *BanList) Tokens() []string {
	if b == nil {
		return []string{}
	}
	out := make([]string, len(b.tokens))
	copy(out, b.tokens)
	return out
}

func (b *BanList) Len() int {
	if b == nil {
		return 0
	}
	return len(b.tokens)
}

// Clone returns an independent copy
func (b *BanList) Clone() *BanList {
	if b == nil {
		return NewBanList()
	}
	return NewBanList(b.tokens...)
}

// Excludes reports whether any of the breed's name, origin or temperament is
// banned. Temperament is compared as the whole comma-joined string.
func (b *BanList) Excludes(breed *Breed) bool {
	return b.Contains(breed.Name) ||
		b.Contains(breed.Origin) ||
		b.Contains(breed.Temperament)
}
