// Package cookiejar parses Netscape-format cookie jars, the file format the
// bot hands to yt-dlp for authenticated downloads.
package cookiejar
