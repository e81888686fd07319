package sku

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Valid(t *testing.T) {
	testCases := []struct {
		name     string
		code     string
		expected bool
	}{
		{name: "Valid - letters, digits and hyphen", code: "WID-1000", expected: true},
		{name: "Valid - lowercase is normalized", code: "wid-1000", expected: true},
		{name: "Valid - surrounding whitespace is trimmed", code: "  ABC-1234  ", expected: true},
		{name: "Valid - minimum length of four", code: "AB-1", expected: true},
		{name: "Valid - maximum length of twenty", code: "ABCDEFGHIJ1234567890", expected: true},
		{name: "Invalid - empty", code: "", expected: false},
		{name: "Invalid - whitespace only", code: "   ", expected: false},
		{name: "Invalid - too short", code: "AB1", expected: false},
		{name: "Invalid - too long", code: "ABCDEFGHIJ1234567890X", expected: false},
		{name: "Invalid - underscore not allowed", code: "ABC_1234", expected: false},
		{name: "Invalid - inner whitespace", code: "ABC 1234", expected: false},
		{name: "Invalid - unicode letters", code: "ÄBCÖ-1", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Valid(tc.code))
		})
	}
}

func Test_Normalize(t *testing.T) {
	assert.Equal(t, "ABC-1234", Normalize(" abc-1234 "))
	assert.Equal(t, "", Normalize("   "))
}
