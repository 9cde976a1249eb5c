package validate

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/codecast/codecast/internal/model"
)

// Field limits enforced on every write endpoint.
const (
	MinTitleLength       = 5
	MaxTitleLength       = 100
	MinDescriptionLength = 20
	MaxDescriptionLength = 5000
	MaxTags              = 10
	MaxTagLength         = 30
	MaxCommentLength     = 2000
	MinUsernameLength    = 3
	MaxUsernameLength    = 50
	MinPasswordLength    = 8
	MaxPasswordLength    = 72 // bcrypt input limit
	MaxCategoryLength    = 100
	MaxURLLength         = 2000
)

// durationPattern accepts M:SS and H:MM:SS style strings, e.g. 12:34, 1:23:45.
var durationPattern = regexp.MustCompile(`^\d+:\d{2}(:\d{2})?$`)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

func checkRange(value string, min, max int, field string) string {
	if len(value) < min {
		return fmt.Sprintf("%s must be at least %d characters", field, min)
	}
	if len(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func Title(s string) string       { return checkRange(s, MinTitleLength, MaxTitleLength, "title") }
func Description(s string) string {
	return checkRange(s, MinDescriptionLength, MaxDescriptionLength, "description")
}

func Category(s string) string {
	return checkRange(s, 1, MaxCategoryLength, "category")
}

func Difficulty(s string) string {
	if !model.ValidDifficulty(s) {
		return "difficulty must be beginner, intermediate, or advanced"
	}
	return ""
}

func EmbedType(s string) string {
	if !model.ValidEmbedType(s) {
		return "embedType must be youtube, vimeo, or upload"
	}
	return ""
}

// URL validates an absolute http(s) URL. Videos with embedType "upload" store
// an object key instead and skip this check.
func URL(s, field string) string {
	if msg := checkRange(s, 1, MaxURLLength, field); msg != "" {
		return msg
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf("%s must be a valid http(s) URL", field)
	}
	return ""
}

func Duration(s string) string {
	if !durationPattern.MatchString(s) {
		return "duration must look like 12:34 or 1:23:45"
	}
	return ""
}

func Tags(tags []string) string {
	if len(tags) == 0 {
		return "at least one tag is required"
	}
	if len(tags) > MaxTags {
		return fmt.Sprintf("at most %d tags are allowed", MaxTags)
	}
	for _, tag := range tags {
		if msg := checkRange(tag, 1, MaxTagLength, "tag"); msg != "" {
			return msg
		}
	}
	return ""
}

func CommentContent(s string) string {
	return checkRange(s, 1, MaxCommentLength, "content")
}

func Username(s string) string {
	if msg := checkRange(s, MinUsernameLength, MaxUsernameLength, "username"); msg != "" {
		return msg
	}
	if !usernamePattern.MatchString(s) {
		return "username may only contain letters, digits, '.', '-' and '_'"
	}
	return ""
}

func Password(s string) string {
	return checkRange(s, MinPasswordLength, MaxPasswordLength, "password")
}
