package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MimeImage = "image/"
	MimeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	AllowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}
)

// 列表数量上限
const (
	LessonProblems        = 5
	GuestLessonProblems   = 3
	GuestPracticeProblems = 5
	QuizProblemLimit      = 10
	RecentAttemptsLimit   = 10
	HistoryLimit          = 50
	LeaderboardLimit      = 10
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)
