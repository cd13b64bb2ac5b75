package kpikra

import "errors"

var ErrEmptyBrief = errors.New("designation brief is empty")
