// SPDX-License-Identifier: GPL-2.0-only

package tamp

import (
	"bytes"
	"testing"
)

func TestInitializeDictionaryZeroSeed(t *testing.T) {
	buf, err := initializeDictionary(256, 0)
	if err != nil {
		t.Fatalf("initializeDictionary: %v", err)
	}
	want := make([]byte, 256)
	if !bytes.Equal(buf, want) {
		t.Fatalf("seed=0 dictionary not all-zero")
	}
}

func TestInitializeDictionaryInvalidSize(t *testing.T) {
	if _, err := initializeDictionary(0, DefaultDictionarySeed); err != ErrInvalidParameter {
		t.Fatalf("got %v, want ErrInvalidParameter", err)
	}
	if _, err := initializeDictionary(-1, DefaultDictionarySeed); err != ErrInvalidParameter {
		t.Fatalf("got %v, want ErrInvalidParameter", err)
	}
}

func TestInitializeDictionaryDeterministic(t *testing.T) {
	a, err := initializeDictionary(1024, DefaultDictionarySeed)
	if err != nil {
		t.Fatalf("initializeDictionary: %v", err)
	}
	b, err := initializeDictionary(1024, DefaultDictionarySeed)
	if err != nil {
		t.Fatalf("initializeDictionary: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("two calls with the same seed produced different output")
	}
}

func TestInitializeDictionaryAlphabet(t *testing.T) {
	buf, err := initializeDictionary(4096, DefaultDictionarySeed)
	if err != nil {
		t.Fatalf("initializeDictionary: %v", err)
	}
	allowed := make(map[byte]bool, len(seedChars))
	for _, c := range seedChars {
		allowed[c] = true
	}
	for i, b := range buf {
		if !allowed[b] {
			t.Fatalf("byte %d (%#x) not in seed alphabet", i, b)
		}
	}
}

func TestInitializeDictionaryGoldenPrefix(t *testing.T) {
	buf, err := initializeDictionary(256, DefaultDictionarySeed)
	if err != nil {
		t.Fatalf("initializeDictionary: %v", err)
	}
	want := []byte{
		0x00, '.', '/', '/', 'r', '.', '0', '.', ' ', 't', '>', '\n',
		'/', '>', 's', 'n', 'a', 's', '.', 't', 'r', 'n', 'r', ' ', 'i',
	}
	if !bytes.Equal(buf[:len(want)], want) {
		t.Fatalf("golden dictionary prefix = %q, want %q", buf[:len(want)], want)
	}
}

func TestInitializeDictionaryRemainderStaysZero(t *testing.T) {
	// n=10 is not a multiple of 8: only one full xorshift32 iteration
	// (8 bytes) runs, so the last two bytes stay zero.
	buf, err := initializeDictionary(10, DefaultDictionarySeed)
	if err != nil {
		t.Fatalf("initializeDictionary: %v", err)
	}
	if buf[8] != 0 || buf[9] != 0 {
		t.Fatalf("trailing remainder bytes = %#x %#x, want zero", buf[8], buf[9])
	}
}

func TestComputeMinPatternSize(t *testing.T) {
	cases := []struct {
		window, literal, want int
	}{
		{10, 8, 2},
		{8, 5, 2},
		{15, 8, 2},
		{15, 5, 3},
		{10, 5, 2},
	}
	for _, c := range cases {
		got, err := computeMinPatternSize(c.window, c.literal)
		if err != nil {
			t.Fatalf("computeMinPatternSize(%d,%d): %v", c.window, c.literal, err)
		}
		if got != c.want {
			t.Errorf("computeMinPatternSize(%d,%d) = %d, want %d", c.window, c.literal, got, c.want)
		}
	}
}

func TestComputeMinPatternSizeInvalid(t *testing.T) {
	if _, err := computeMinPatternSize(7, 8); err != ErrInvalidParameter {
		t.Fatalf("got %v, want ErrInvalidParameter", err)
	}
	if _, err := computeMinPatternSize(10, 4); err != ErrInvalidParameter {
		t.Fatalf("got %v, want ErrInvalidParameter", err)
	}
}
