package cookiejar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleJar = `# Netscape HTTP Cookie File
# This is a generated file! Do not edit.

.youtube.com	TRUE	/	TRUE	1893456000	SID	youtube-session
#HttpOnly_.instagram.com	TRUE	/	TRUE	1600000000	sessionid	expired-session
.instagram.com	TRUE	/	FALSE	0	csrftoken	abc
`

// TestParse checks comments, HttpOnly entries and session cookies.
func TestParse(t *testing.T) {
	t.Parallel()

	cookies, err := Parse(strings.NewReader(sampleJar))
	require.NoError(t, err)
	require.Len(t, cookies, 3)

	sid := cookies[0]
	require.Equal(t, ".youtube.com", sid.Domain)
	require.True(t, sid.IncludeSubdomains)
	require.True(t, sid.Secure)
	require.False(t, sid.Expired(time.Now()))

	session := cookies[1]
	require.Equal(t, "sessionid", session.Name)
	require.True(t, session.Expired(time.Now()))

	// Session cookie: zero expiry, never expired.
	csrf := cookies[2]
	require.True(t, csrf.Expires.IsZero())
	require.False(t, csrf.Expired(time.Now()))
}

// TestParseMalformed checks that truncated lines are rejected.
func TestParseMalformed(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader(".youtube.com\tTRUE\t/\n"))
	require.Error(t, err)

	_, err = Parse(strings.NewReader(".x.com\tTRUE\t/\tTRUE\tnot-a-number\ta\tb\n"))
	require.Error(t, err)
}

// TestFind checks name+domain lookup and domain presence helpers.
func TestFind(t *testing.T) {
	t.Parallel()

	cookies, err := Parse(strings.NewReader(sampleJar))
	require.NoError(t, err)

	session, found := Find(cookies, ".instagram.com", "sessionid")
	require.True(t, found)
	require.Equal(t, "expired-session", session.Value)

	_, found = Find(cookies, ".instagram.com", "nope")
	require.False(t, found)

	require.True(t, AnyForDomain(cookies, "youtube.com"))
	require.False(t, AnyForDomain(cookies, "tiktok.com"))
}
