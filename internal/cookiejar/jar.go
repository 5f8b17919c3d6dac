package cookiejar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Cookie is a single entry of a Netscape-format cookie jar, the format
// yt-dlp consumes via --cookies.
type Cookie struct {
	// Domain is the cookie domain, usually with a leading dot.
	Domain string
	// IncludeSubdomains mirrors the jar's TRUE/FALSE second column.
	IncludeSubdomains bool
	// Path is the URL path scope.
	Path string
	// Secure restricts the cookie to HTTPS.
	Secure bool
	// Expires is the expiry time; zero means a session cookie.
	Expires time.Time
	// Name is the cookie name.
	Name string
	// Value is the cookie value.
	Value string
}

// Expired reports whether the cookie has an expiry in the past.
// Session cookies (no expiry) never report as expired.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && c.Expires.Before(now)
}

// httpOnlyPrefix marks entries written by browsers for HttpOnly cookies.
const httpOnlyPrefix = "#HttpOnly_"

// jarFieldCount is the number of tab-separated columns per entry.
const jarFieldCount = 7

// Load reads and parses a cookie jar file.
func Load(path string) ([]Cookie, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open cookie jar: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	return Parse(file)
}

// Parse reads a Netscape cookie jar. Comment and blank lines are skipped;
// #HttpOnly_ entries are real cookies and are kept. Malformed lines are an
// error so a truncated jar does not silently pass a health check.
func Parse(r io.Reader) ([]Cookie, error) {
	var (
		cookies []Cookie
		scanner = bufio.NewScanner(r)
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if strings.HasPrefix(line, httpOnlyPrefix) {
			line = strings.TrimPrefix(line, httpOnlyPrefix)
		} else if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != jarFieldCount {
			return nil, fmt.Errorf("cookie jar line %d: expected %d fields, got %d",
				lineNo, jarFieldCount, len(fields))
		}

		expiresUnix, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cookie jar line %d: bad expiry: %w", lineNo, err)
		}

		var expires time.Time
		if expiresUnix > 0 {
			expires = time.Unix(expiresUnix, 0)
		}

		cookies = append(cookies, Cookie{
			Domain:            fields[0],
			IncludeSubdomains: strings.EqualFold(fields[1], "TRUE"),
			Path:              fields[2],
			Secure:            strings.EqualFold(fields[3], "TRUE"),
			Expires:           expires,
			Name:              fields[5],
			Value:             fields[6],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cookie jar: %w", err)
	}

	return cookies, nil
}

// Find returns the first cookie with the provided name whose domain contains
// domainPart.
func Find(cookies []Cookie, domainPart, name string) (Cookie, bool) {
	for _, cookie := range cookies {
		if cookie.Name == name && strings.Contains(cookie.Domain, domainPart) {
			return cookie, true
		}
	}

	return Cookie{}, false
}

// AnyForDomain reports whether the jar holds at least one cookie whose
// domain contains domainPart.
func AnyForDomain(cookies []Cookie, domainPart string) bool {
	for _, cookie := range cookies {
		if strings.Contains(cookie.Domain, domainPart) {
			return true
		}
	}

	return false
}
