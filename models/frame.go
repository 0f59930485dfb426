package models

type FrameStatus string

const (
	FrameStatusLive      FrameStatus = "LIVE"
	FrameStatusCompleted FrameStatus = "COMPLETED"
)
