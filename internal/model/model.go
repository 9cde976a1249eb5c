package model

import "time"

// User roles, ordered from least to most privileged.
const (
	RoleViewer  = "viewer"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// Video moderation states.
const (
	VideoStatusActive  = "active"
	VideoStatusPending = "pending"
	VideoStatusRemoved = "removed"
)

// Comment moderation states.
const (
	CommentStatusActive  = "active"
	CommentStatusFlagged = "flagged"
	CommentStatusRemoved = "removed"
)

const (
	EmbedYouTube = "youtube"
	EmbedVimeo   = "vimeo"
	EmbedUpload  = "upload"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// StatusAny disables the status filter entirely. An empty VideoFilter.Status
// means "active only", which is what unauthenticated listing queries get.
const StatusAny = "any"

func ValidRole(r string) bool {
	return r == RoleViewer || r == RoleCreator || r == RoleAdmin
}

func ValidVideoStatus(s string) bool {
	return s == VideoStatusActive || s == VideoStatusPending || s == VideoStatusRemoved
}

func ValidCommentStatus(s string) bool {
	return s == CommentStatusActive || s == CommentStatusFlagged || s == CommentStatusRemoved
}

func ValidEmbedType(t string) bool {
	return t == EmbedYouTube || t == EmbedVimeo || t == EmbedUpload
}

func ValidDifficulty(d string) bool {
	return d == DifficultyBeginner || d == DifficultyIntermediate || d == DifficultyAdvanced
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

type Video struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creatorId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	EmbedType   string    `json:"embedType"`
	Thumbnail   *string   `json:"thumbnail"`
	Duration    *string   `json:"duration"`
	Category    string    `json:"category"`
	Difficulty  string    `json:"difficulty"`
	Tags        []string  `json:"tags"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	Dislikes    int64     `json:"dislikes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type NewVideo struct {
	CreatorID   string
	Title       string
	Description string
	URL         string
	EmbedType   string
	Thumbnail   *string
	Duration    *string
	Category    string
	Difficulty  string
	Tags        []string
	Status      string
}

// VideoUpdate carries a partial update; nil fields are left untouched.
type VideoUpdate struct {
	Title       *string
	Description *string
	URL         *string
	EmbedType   *string
	Thumbnail   *string
	Duration    *string
	Category    *string
	Difficulty  *string
	Tags        *[]string
	Status      *string
}

// VideoFilter composes the listing query. All set fields are ANDed; Search
// matches title or description case-insensitively.
type VideoFilter struct {
	Category   string
	Difficulty string
	Tag        string
	Search     string
	Status     string
	CreatorID  string
	Limit      int
	Offset     int
}

type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	Likes     int64     `json:"likes"`
	ParentID  *string   `json:"parentId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type NewComment struct {
	VideoID  string
	UserID   string
	Content  string
	ParentID *string
}

type WatchHistoryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	VideoID   string    `json:"videoId"`
	Progress  int       `json:"progress"` // seconds elapsed
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WatchHistoryUpsert struct {
	UserID    string
	VideoID   string
	Progress  int
	Completed bool
}

type WatchLaterEntry struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	VideoID string    `json:"videoId"`
	AddedAt time.Time `json:"addedAt"`
}

// VideoView is one recorded playback of a video detail page. ViewerHash is a
// truncated hash of IP + user agent, never the raw address.
type VideoView struct {
	VideoID    string
	ViewerHash string
	Browser    string
	Device     string
	Country    string
	City       string
}

type DailyViews struct {
	Date        string `json:"date"`
	Views       int64  `json:"views"`
	UniqueViews int64  `json:"uniqueViews"`
}

type BucketCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type VideoStats struct {
	TotalViews  int64         `json:"totalViews"`
	UniqueViews int64         `json:"uniqueViews"`
	Daily       []DailyViews  `json:"daily"`
	Browsers    []BucketCount `json:"browsers"`
	Devices     []BucketCount `json:"devices"`
	Countries   []BucketCount `json:"countries"`
}
