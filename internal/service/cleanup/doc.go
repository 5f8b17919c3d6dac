// Package cleanup prunes stale downloads and temporaries from the bot's data
// directory, sparing the database and log files.
package cleanup
