package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mailfix/message/header/field"
)

func TestNew(t *testing.T) {
	t.Parallel()

	f := field.New("Subject", "testing")

	assert.Equal(t, "Subject: testing", f.String())
	assert.Equal(t, []byte("Subject: testing"), f.Bytes())
	assert.Equal(t, "Subject", f.Name())
	assert.Equal(t, "testing", f.Body())
	assert.Nil(t, f.Raw())

	f.SetName("X-Subject")
	assert.Equal(t, "X-Subject: testing", f.String())

	f.SetBody("foo bar baz")
	assert.Equal(t, "X-Subject: foo bar baz", f.String())

	f.SetRaw([]byte("sUBJECT: TESTING"))
	assert.Equal(t, "sUBJECT: TESTING", f.String())
	assert.Equal(t, "X-Subject", f.Name())
	assert.Equal(t, "foo bar baz", f.Body())

	f.SetName("Subject")
	assert.Equal(t, "Subject: foo bar baz", f.String())
	assert.Nil(t, f.Raw())
}

func TestParse(t *testing.T) {
	t.Parallel()

	f := field.Parse(field.Line("Subject:  folded\n\tacross lines \n"), []byte("\n"))
	assert.Equal(t, "Subject", f.Name())
	assert.Equal(t, "folded\tacross lines", f.Body())
	assert.Equal(t, "Subject:  folded\n\tacross lines ", f.String())

	f = field.Parse(field.Line("no colon here\r\n"), []byte("\r\n"))
	assert.Equal(t, "no colon here", f.Name())
	assert.Equal(t, "", f.Body())
	assert.Equal(t, "no colon here", f.String())
}

func TestParse_Decode(t *testing.T) {
	t.Parallel()

	f := field.Parse(field.Line("Subject: =?utf-8?Q?caf=C3=A9?=\n"), []byte("\n"))
	assert.Equal(t, "café", f.Body())
	assert.Equal(t, "Subject: =?utf-8?Q?caf=C3=A9?=", f.String())

	f = field.Parse(field.Line("Subject: =?windows-1252?Q?caf=E9?=\n"), []byte("\n"))
	assert.Equal(t, "café", f.Body())

	// unknown charsets are left alone
	f = field.Parse(field.Line("Subject: =?x-bogus?Q?abc?=\n"), []byte("\n"))
	assert.Equal(t, "=?x-bogus?Q?abc?=", f.Body())
}

func TestParseLines(t *testing.T) {
	t.Parallel()

	lines, err := field.ParseLines([]byte("A: b\nC: d\n e\nF: g\n"), []byte("\n"))
	require.NoError(t, err)
	assert.Equal(t, field.Lines{
		field.Line("A: b\n"),
		field.Line("C: d\n e\n"),
		field.Line("F: g\n"),
	}, lines)
}

func TestParseLines_BadStart(t *testing.T) {
	t.Parallel()

	lines, err := field.ParseLines([]byte(" junk\nmore junk\nA: b\n"), []byte("\n"))

	var badStart *field.BadStartError
	require.ErrorAs(t, err, &badStart)
	assert.Equal(t, []byte(" junk\nmore junk\n"), badStart.BadStart)
	assert.Equal(t, field.Lines{field.Line("A: b\n")}, lines)
}

func TestField_Clone(t *testing.T) {
	t.Parallel()

	f := field.Parse(field.Line("To: someone@example.com\n"), []byte("\n"))
	c := f.Clone()
	assert.Equal(t, f, c)

	c.SetBody("other@example.com")
	assert.Equal(t, "To: someone@example.com", f.String())
	assert.Equal(t, "To: other@example.com", c.String())
}
