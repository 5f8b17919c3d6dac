// Package cookies checks whether the cookie jar the bot hands to yt-dlp is
// still usable: Instagram session expiry and YouTube cookie presence.
package cookies
