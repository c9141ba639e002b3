package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrConceptNotFound      = errors.New("concept not found")
	ErrProblemNotFound      = errors.New("problem not found")
	ErrPrerequisitesUnmet   = errors.New("you need to complete prerequisite concepts first")
	ErrNoProblems           = errors.New("no practice problems available for this concept")
	ErrInvalidCurriculum    = errors.New("invalid curriculum")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrInvalidRole          = errors.New("invalid role")
)
