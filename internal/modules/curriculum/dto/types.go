package dto

import "time"

type PlanOutput struct {
	ID          string
	Title       string
	Checkpoints int
	UpdatedAt   time.Time
}

type CheckpointOutput struct {
	OrderIndex int
	Topic      string
	Difficulty string
	Objectives []string
}

type PlanDetailOutput struct {
	ID          string
	Title       string
	UpdatedAt   time.Time
	Checkpoints []CheckpointOutput
}
