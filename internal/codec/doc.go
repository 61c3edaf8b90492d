// Package codec decodes downloaded pronunciation files (mp3, wav, ogg vorbis)
// into PCM and converts it to the output device format.
package codec
