// Package speech provides the text-to-speech voices that back text-to-speech
// audio sources. Voices shell out to gtts-cli or piper and return PCM.
package speech
