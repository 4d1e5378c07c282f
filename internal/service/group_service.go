package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"spottr/internal/models"
	"spottr/internal/repository"
	"spottr/internal/validation"
)

const (
	joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	joinCodeAttempts = 5
	maxMessageLen    = 2000
	chatHistoryLimit = 100
)

// GroupService manages workout groups and their chat.
type GroupService struct {
	groupRepo repository.GroupRepository
	chatRepo  repository.ChatRepository
	userRepo  repository.UserRepository
	newCode   func() (string, error)
}

type CreateGroupInput struct {
	CreatorID   uint
	Name        string
	Description string
	AvatarEmoji string
	MemberIDs   []uint
}

// GroupSummary is a group with the viewer's unread message count.
type GroupSummary struct {
	models.Group
	UnreadCount int64 `json:"unread_count"`
}

func NewGroupService(groupRepo repository.GroupRepository, chatRepo repository.ChatRepository, userRepo repository.UserRepository) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		chatRepo:  chatRepo,
		userRepo:  userRepo,
		newCode:   generateJoinCode,
	}
}

func generateJoinCode() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := 0; i < models.JoinCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(joinCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// CreateGroup creates a group with a fresh join code. The creator becomes an
// admin member and known MemberIDs are added as regular members.
func (s *GroupService) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Group name is required")
	}
	if len(name) > 100 {
		return nil, models.NewValidationError("Group name too long (max 100 characters)")
	}

	members, err := s.userRepo.FindByIDs(ctx, dedupe(in.MemberIDs))
	if err != nil {
		return nil, err
	}
	memberIDs := make([]uint, 0, len(members))
	for _, m := range members {
		if m.ID != in.CreatorID {
			memberIDs = append(memberIDs, m.ID)
		}
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatorID:   in.CreatorID,
		AvatarEmoji: strings.TrimSpace(in.AvatarEmoji),
	}
	if group.AvatarEmoji == "" {
		group.AvatarEmoji = "💪"
	}

	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		taken, err := s.groupRepo.JoinCodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}
		group.JoinCode = code
		err = s.groupRepo.Create(ctx, group, memberIDs)
		if models.IsCode(err, models.CodeConflict) {
			// Lost a race for the code.
			continue
		}
		if err != nil {
			return nil, err
		}
		return s.groupRepo.GetByID(ctx, group.ID)
	}
	return nil, models.NewConflictError("Could not allocate a join code")
}

// JoinByCode adds the viewer to the group with the given code. Joining a
// group twice is harmless.
func (s *GroupService) JoinByCode(ctx context.Context, viewerID uint, code string) (*models.Group, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validation.ValidateJoinCode(code); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	group, err := s.groupRepo.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if _, err := s.groupRepo.AddMember(ctx, group.ID, viewerID); err != nil {
		return nil, err
	}
	return s.groupRepo.GetByID(ctx, group.ID)
}

func (s *GroupService) ListGroups(ctx context.Context, viewerID uint) ([]GroupSummary, error) {
	groups, err := s.groupRepo.ListForUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	unread, err := s.chatRepo.GroupUnreadCounts(ctx, ids, viewerID)
	if err != nil {
		return nil, err
	}
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupSummary{Group: g, UnreadCount: unread[g.ID]})
	}
	return out, nil
}

func (s *GroupService) requireMember(ctx context.Context, groupID, viewerID uint) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ok, err := s.groupRepo.IsMember(ctx, groupID, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewForbiddenError("You are not a member of this group")
	}
	return group, nil
}

func cleanMessage(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Message cannot be empty")
	}
	if len(content) > maxMessageLen {
		return "", models.NewValidationError("Message too long (max 2000 characters)")
	}
	return content, nil
}

func (s *GroupService) SendGroupMessage(ctx context.Context, viewerID, groupID uint, content string) (*models.Message, error) {
	content, err := cleanMessage(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	msg := &models.Message{SenderID: viewerID, GroupID: &groupID, Content: content}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *GroupService) SendDirectMessage(ctx context.Context, viewerID, recipientID uint, content string) (*models.Message, error) {
	content, err := cleanMessage(content)
	if err != nil {
		return nil, err
	}
	if viewerID == recipientID {
		return nil, models.NewValidationError("You cannot message yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}
	msg := &models.Message{SenderID: viewerID, RecipientID: &recipientID, Content: content}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// GroupHistory returns recent group messages oldest first and marks the
// ones sent by others as read.
func (s *GroupService) GroupHistory(ctx context.Context, viewerID, groupID uint) ([]*models.Message, error) {
	if _, err := s.requireMember(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	msgs, err := s.chatRepo.GroupMessages(ctx, groupID, chatHistoryLimit)
	if err != nil {
		return nil, err
	}
	if err := s.chatRepo.MarkGroupRead(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	return msgs, nil
}

// DirectHistory returns the recent conversation with otherID oldest first
// and marks incoming messages as read.
func (s *GroupService) DirectHistory(ctx context.Context, viewerID, otherID uint) ([]*models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		return nil, err
	}
	msgs, err := s.chatRepo.DirectMessages(ctx, viewerID, otherID, chatHistoryLimit)
	if err != nil {
		return nil, err
	}
	if err := s.chatRepo.MarkDirectRead(ctx, viewerID, otherID); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *GroupService) UnreadCount(ctx context.Context, viewerID uint) (int64, error) {
	return s.chatRepo.UnreadCount(ctx, viewerID)
}
