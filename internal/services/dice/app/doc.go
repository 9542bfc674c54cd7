// Package app runs dice operations end to end: it rolls with a fresh
// recorder per call, renders the transcript, picks a flavor line and keeps
// the randomness pool topped up.
package app
