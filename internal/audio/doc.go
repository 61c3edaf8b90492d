// Package audio turns discovered audio infos into playable clips on an oto
// output device. It handles fetching and decoding of audio files, speech
// synthesis clips and the built-in fallback sounds.
package audio
