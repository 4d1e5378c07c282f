package service

import (
	"context"
	"strings"
	"time"

	"spottr/internal/models"
	"spottr/internal/repository"
)

// Feed tabs.
const (
	FeedMain    = "main"
	FeedFriends = "friends"
)

const (
	maxContentLen = 5000
	maxHashtagLen = 200
	maxComment    = 1000
	defaultFeed   = 50
)

// PostService handles feed posts, check-ins and their interactions.
type PostService struct {
	tx           repository.Transactor
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	friendRepo   repository.FriendRepository
	gymRepo      repository.GymRepository
	streaks      ActivityRecorder
	achievements AchievementEvaluator
	now          func() time.Time
}

type CreatePostInput struct {
	UserID     uint
	Content    string
	ImageURL   string
	Hashtags   string
	PRExercise string
	PRWeight   int
	Poll       *models.Poll
}

type CheckinInput struct {
	UserID     uint
	GymID      *uint
	Caption    string
	Activities []string
	Other      string
	ImageURL   string
}

type FeedInput struct {
	ViewerID uint
	Tab      string
	Limit    int
	Offset   int
}

// ReactResult reports what a reaction request did.
type ReactResult struct {
	Status string              `json:"status"`
	Type   models.ReactionType `json:"type,omitempty"`
}

// Reaction outcomes.
const (
	ReactionAdded   = "added"
	ReactionChanged = "changed"
	ReactionRemoved = "removed"
)

// PollResults are the vote totals of a poll post.
type PollResults struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Votes    []int64  `json:"votes"`
	MyVote   *int     `json:"my_vote,omitempty"`
}

func NewPostService(
	tx repository.Transactor,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	friendRepo repository.FriendRepository,
	gymRepo repository.GymRepository,
	streaks ActivityRecorder,
	achievements AchievementEvaluator,
) *PostService {
	return &PostService{
		tx:           tx,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		friendRepo:   friendRepo,
		gymRepo:      gymRepo,
		streaks:      streaks,
		achievements: achievements,
		now:          time.Now,
	}
}

// CreatePost publishes a general post, or a pr post when an exercise is
// named, and records the day against the author's streak.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 5000 characters)")
	}
	hashtags := strings.TrimSpace(in.Hashtags)
	if len(hashtags) > maxHashtagLen {
		return nil, models.NewValidationError("Hashtags too long (max 200 characters)")
	}

	poll, err := cleanPoll(in.Poll)
	if err != nil {
		return nil, err
	}

	var body models.PostBody = models.GeneralBody{Poll: poll}
	if exercise := strings.TrimSpace(in.PRExercise); exercise != "" {
		if in.PRWeight < 0 {
			return nil, models.NewValidationError("PR weight cannot be negative")
		}
		body = models.PRBody{Exercise: exercise, Weight: in.PRWeight, Poll: poll}
	}

	post := models.NewPost(in.UserID, content, body)
	post.Hashtags = hashtags
	post.ImageURL = strings.TrimSpace(in.ImageURL)
	return s.publish(ctx, post)
}

// cleanPoll drops blank options. A poll without a question or options is
// treated as absent.
func cleanPoll(p *models.Poll) (*models.Poll, error) {
	if p == nil {
		return nil, nil
	}
	out := &models.Poll{Question: strings.TrimSpace(p.Question)}
	for _, opt := range p.Options {
		if opt = strings.TrimSpace(opt); opt != "" {
			out.Options = append(out.Options, opt)
		}
	}
	if out.Question == "" && len(out.Options) == 0 {
		return nil, nil
	}
	if len(out.Options) < 2 || len(out.Options) > models.MaxPollOptions {
		return nil, models.NewValidationError("Poll needs between 2 and 4 options")
	}
	return out, nil
}

// CreateCheckin publishes a gym check-in and records the day against the
// author's streak.
func (s *PostService) CreateCheckin(ctx context.Context, in CheckinInput) (*models.Post, error) {
	body := models.CheckinBody{GymID: in.GymID}
	if in.GymID != nil {
		gym, err := s.gymRepo.GetByID(ctx, *in.GymID)
		if err != nil {
			return nil, err
		}
		body.Location = gym.Name
	}
	for _, a := range in.Activities {
		if a = strings.TrimSpace(a); a != "" {
			body.Activities = append(body.Activities, a)
		}
	}
	if other := strings.TrimSpace(in.Other); other != "" {
		body.Activities = append(body.Activities, other)
	}

	caption := strings.TrimSpace(in.Caption)
	if len(caption) > maxContentLen {
		return nil, models.NewValidationError("Caption too long (max 5000 characters)")
	}
	post := models.NewPost(in.UserID, caption, body)
	post.ImageURL = strings.TrimSpace(in.ImageURL)
	return s.publish(ctx, post)
}

// publish stores the post and records the day against the author's streak
// in one transaction.
func (s *PostService) publish(ctx context.Context, post *models.Post) (*models.Post, error) {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.postRepo.Create(ctx, post); err != nil {
			return err
		}
		_, _, err := s.streaks.RecordActivity(ctx, post.UserID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	refreshAchievements(ctx, s.achievements, post.UserID)
	return s.postRepo.GetByID(ctx, post.ID, post.UserID)
}

// Feed lists posts newest first. The friends tab covers accepted friends and
// followed users.
func (s *PostService) Feed(ctx context.Context, in FeedInput) ([]*models.Post, error) {
	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = defaultFeed
	}
	if in.Offset < 0 {
		in.Offset = 0
	}

	var authors []uint
	if in.Tab == FeedFriends {
		friends, err := s.friendRepo.FriendIDs(ctx, in.ViewerID)
		if err != nil {
			return nil, err
		}
		following, err := s.friendRepo.FollowingIDs(ctx, in.ViewerID)
		if err != nil {
			return nil, err
		}
		authors = dedupe(append(friends, following...))
	}
	return s.postRepo.List(ctx, authors, in.Limit, in.Offset, in.ViewerID)
}

func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, viewerID)
}

func (s *PostService) UserPosts(ctx context.Context, userID, viewerID uint, limit int) ([]*models.Post, error) {
	return s.postRepo.ListByUser(ctx, userID, limit, viewerID)
}

// React adds a reaction, switches it to a different type, or removes it when
// the same type is sent again.
func (s *PostService) React(ctx context.Context, userID, postID uint, reaction models.ReactionType) (*ReactResult, error) {
	if reaction == "" {
		reaction = models.ReactionHeart
	}
	if !reaction.Valid() {
		return nil, models.NewValidationError("Invalid reaction type")
	}
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	existing, err := s.postRepo.GetReaction(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	switch {
	case existing != nil && existing.ReactionType == reaction:
		if err := s.postRepo.DeleteReaction(ctx, userID, postID); err != nil {
			return nil, err
		}
		return &ReactResult{Status: ReactionRemoved}, nil
	case existing != nil:
		existing.ReactionType = reaction
		if err := s.postRepo.SaveReaction(ctx, existing); err != nil {
			return nil, err
		}
		return &ReactResult{Status: ReactionChanged, Type: reaction}, nil
	default:
		if err := s.postRepo.SaveReaction(ctx, &models.Reaction{UserID: userID, PostID: postID, ReactionType: reaction}); err != nil {
			return nil, err
		}
		return &ReactResult{Status: ReactionAdded, Type: reaction}, nil
	}
}

func (s *PostService) Comment(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment cannot be empty")
	}
	if len(content) > maxComment {
		return nil, models.NewValidationError("Comment too long (max 1000 characters)")
	}
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}
	comment := &models.Comment{UserID: userID, PostID: postID, Content: content}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *PostService) Comments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}

// VotePoll records or changes the viewer's vote and returns the new totals.
func (s *PostService) VotePoll(ctx context.Context, userID, postID uint, option int) (*PollResults, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	poll := post.Poll()
	if poll == nil {
		return nil, models.NewValidationError("Post has no poll")
	}
	if option < 0 || option >= len(poll.Options) {
		return nil, models.NewValidationError("Poll option out of range")
	}
	if err := s.postRepo.UpsertPollVote(ctx, &models.PollVote{UserID: userID, PostID: postID, OptionIndex: option}); err != nil {
		return nil, err
	}
	return s.pollResults(ctx, post, poll, userID)
}

func (s *PostService) PollResults(ctx context.Context, userID, postID uint) (*PollResults, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	poll := post.Poll()
	if poll == nil {
		return nil, models.NewValidationError("Post has no poll")
	}
	return s.pollResults(ctx, post, poll, userID)
}

func (s *PostService) pollResults(ctx context.Context, post *models.Post, poll *models.Poll, userID uint) (*PollResults, error) {
	votes, err := s.postRepo.PollVoteCounts(ctx, post.ID, len(poll.Options))
	if err != nil {
		return nil, err
	}
	res := &PollResults{Question: poll.Question, Options: poll.Options, Votes: votes}
	mine, err := s.postRepo.GetPollVote(ctx, userID, post.ID)
	if err != nil {
		return nil, err
	}
	if mine != nil {
		idx := mine.OptionIndex
		res.MyVote = &idx
	}
	return res, nil
}
