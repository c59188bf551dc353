package game

import "time"

type Difficulty struct {
	Name   string
	Level  int
	Source string // Where the loader finds the note data
}

// Info describes a chart and its difficulties, without note data.
type Info struct {
	ID           string
	Title        string
	Artist       string
	MusicPath    string
	Offset       time.Duration // Chart offset subtracted from the audio position
	Difficulties []Difficulty
}
