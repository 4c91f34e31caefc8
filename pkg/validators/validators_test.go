package validators

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var officeTypes = []string{"pptx", "docx", "xlsx"}

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("user@example.com"))
	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("not-an-email"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator("Name <user@example.com>"), ErrEmailInvalid)
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, PasswordValidator("password123"))
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("short"), ErrPasswordTooShort)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("a", 256)), ErrPasswordTooLong)
}

func TestFileNameValidator(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  error
	}{
		{"report.xlsx", "report.xlsx", nil},
		{"Deck.PPTX", "Deck.PPTX", nil},
		{"notes.DocX", "notes.DocX", nil},
		{"../../etc/report.docx", "report.docx", nil},
		{`C:\Users\me\report.xlsx`, "report.xlsx", nil},
		{"", "", ErrNoFile},
		{"report.pdf", "", ErrFileTypeUnsupported},
		{"xlsx", "", ErrFileTypeUnsupported},
		{"report.xlsx.exe", "", ErrFileTypeUnsupported},
		{"..", "", ErrFileNameInvalid},
		{"bad\x00name.docx", "", ErrFileNameInvalid},
		{strings.Repeat("a", 256) + ".docx", "", ErrFileNameTooLong},
	}

	for _, tt := range tests {
		got, err := FileNameValidator(tt.in, officeTypes)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.in)
			continue
		}

		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestDetectContentType(t *testing.T) {
	r := bytes.NewReader([]byte("plain text body"))

	ct, err := DetectContentType(r)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ct, "text/plain"), ct)

	// Reader must be rewound for the caller
	pos, err := r.Seek(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
}
