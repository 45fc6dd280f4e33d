package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
)

var Platforms = []Platform{PlatformInstagram, PlatformLinkedIn, PlatformTwitter, PlatformFacebook}

type platformLimits struct {
	chars    int
	hashtags int
}

var limits = map[Platform]platformLimits{
	PlatformInstagram: {chars: 2200, hashtags: 30},
	PlatformLinkedIn:  {chars: 3000, hashtags: 10},
	PlatformTwitter:   {chars: 280, hashtags: 5},
	PlatformFacebook:  {chars: 63206, hashtags: 8},
}

func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := limits[p]; !ok {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

func (p Platform) Valid() bool {
	_, ok := limits[p]
	return ok
}

// CharLimit is the maximum body length the platform accepts.
func (p Platform) CharLimit() int {
	if l, ok := limits[p]; ok {
		return l.chars
	}
	return limits[PlatformInstagram].chars
}

// HashtagLimit is the maximum number of hashtags kept for the platform.
func (p Platform) HashtagLimit() int {
	if l, ok := limits[p]; ok {
		return l.hashtags
	}
	return limits[PlatformInstagram].hashtags
}

func (p Platform) Title() string {
	switch p {
	case PlatformLinkedIn:
		return "LinkedIn"
	case "":
		return ""
	default:
		return strings.ToUpper(string(p[:1])) + string(p[1:])
	}
}

const DefaultTone = "engaging"

type Request struct {
	Platform Platform `json:"platform"`
	Niche    string   `json:"niche"`
	Audience string   `json:"audience"`
	Tone     string   `json:"tone,omitempty"`
}

func NewRequest(platform Platform, niche, audience, tone string) (Request, error) {
	req := Request{
		Platform: platform,
		Niche:    strings.TrimSpace(niche),
		Audience: strings.TrimSpace(audience),
		Tone:     strings.TrimSpace(tone),
	}
	if req.Tone == "" {
		req.Tone = DefaultTone
	}
	return req, req.Validate()
}

func (r Request) Validate() error {
	var errs []error
	if !r.Platform.Valid() {
		errs = append(errs, fmt.Errorf("unknown platform %q", r.Platform))
	}
	if strings.TrimSpace(r.Niche) == "" {
		errs = append(errs, errors.New("niche is required"))
	}
	if strings.TrimSpace(r.Audience) == "" {
		errs = append(errs, errors.New("audience is required"))
	}
	return errors.Join(errs...)
}

type Topic struct {
	Title              string `json:"title"`
	Hook               string `json:"hook"`
	Angle              string `json:"angle"`
	EngagementQuestion string `json:"engagement_question"`
}

type Content struct {
	Topic       string `json:"topic"`
	Hook        string `json:"hook,omitempty"`
	Body        string `json:"body"`
	CharCount   int    `json:"character_count"`
	WithinLimit bool   `json:"within_limit"`
}

type ImagePrompt string

type ImageSource string

const (
	SourceGenerated   ImageSource = "generated"
	SourcePlaceholder ImageSource = "placeholder"
)

type ImageArtifact struct {
	Data   []byte      `json:"-"`
	Path   string      `json:"path,omitempty"`
	Source ImageSource `json:"source"`
	// Reason explains why a placeholder was used.
	Reason string `json:"reason,omitempty"`
}

func (a ImageArtifact) IsPlaceholder() bool {
	return a.Source == SourcePlaceholder
}

type Category string

const (
	CategoryBroad         Category = "broad"
	CategoryNiche         Category = "niche"
	CategoryTrending      Category = "trending"
	CategoryUncategorized Category = "uncategorized"
)

type Hashtag struct {
	Tag      string   `json:"tag"`
	Category Category `json:"category"`
}

// HashtagStrategy is the advice that came with the hashtags. Every field
// is optional.
type HashtagStrategy struct {
	Alternatives    []string `json:"alternative_hashtags,omitempty"`
	Strategy        string   `json:"strategy,omitempty"`
	ReachPrediction string   `json:"reach_prediction,omitempty"`
}

func (s HashtagStrategy) IsZero() bool {
	return len(s.Alternatives) == 0 && s.Strategy == "" && s.ReachPrediction == ""
}

type Result struct {
	ID          string          `json:"post_id"`
	Request     Request         `json:"parameters"`
	Content     Content         `json:"content"`
	ImagePrompt ImagePrompt     `json:"image_prompt,omitempty"`
	Image       ImageArtifact   `json:"image"`
	Hashtags    []Hashtag       `json:"hashtags"`
	Strategy    HashtagStrategy `json:"hashtag_strategy"`
	CreatedAt   time.Time       `json:"generation_timestamp"`
}

func (r *Result) Tags() []string {
	tags := make([]string, len(r.Hashtags))
	for i, h := range r.Hashtags {
		tags[i] = "#" + h.Tag
	}
	return tags
}
