package service

import (
	"context"
	"strings"
	"time"

	"spottr/internal/models"
	"spottr/internal/repository"
)

const topLifterLimit = 10

// GymService covers gym membership, crowd reports, lifter boards and workout invites.
type GymService struct {
	gymRepo    repository.GymRepository
	inviteRepo repository.InviteRepository
	userRepo   repository.UserRepository
}

// GymDetail is a gym with its live member count and top lifters.
type GymDetail struct {
	Gym        *models.Gym           `json:"gym"`
	TopLifters []models.GymTopLifter `json:"top_lifters"`
}

// GymOverview is the viewer's gym page.
type GymOverview struct {
	Gyms    []models.Gym           `json:"gyms"`
	MyGym   *GymDetail             `json:"my_gym,omitempty"`
	Invites []models.WorkoutInvite `json:"invites"`
}

type InviteInput struct {
	FromUserID    uint
	ToUserIDs     []uint
	WorkoutType   string
	Message       string
	Spots         int
	ScheduledTime *time.Time
}

type TopLiftInput struct {
	UserID      uint
	SquatMax    int
	BenchMax    int
	DeadliftMax int
}

func NewGymService(gymRepo repository.GymRepository, inviteRepo repository.InviteRepository, userRepo repository.UserRepository) *GymService {
	return &GymService{gymRepo: gymRepo, inviteRepo: inviteRepo, userRepo: userRepo}
}

func (s *GymService) ListGyms(ctx context.Context) ([]models.Gym, error) {
	return s.gymRepo.List(ctx)
}

func (s *GymService) GymDetail(ctx context.Context, gymID uint) (*GymDetail, error) {
	gym, err := s.gymRepo.GetByID(ctx, gymID)
	if err != nil {
		return nil, err
	}
	lifters, err := s.gymRepo.TopLifters(ctx, gymID, topLifterLimit)
	if err != nil {
		return nil, err
	}
	return &GymDetail{Gym: gym, TopLifters: lifters}, nil
}

func (s *GymService) Overview(ctx context.Context, viewerID uint) (*GymOverview, error) {
	gyms, err := s.gymRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	overview := &GymOverview{Gyms: gyms}

	membership, err := s.gymRepo.ActiveMembership(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if membership != nil {
		if overview.MyGym, err = s.GymDetail(ctx, membership.GymID); err != nil {
			return nil, err
		}
	}
	if overview.Invites, err = s.inviteRepo.ListReceived(ctx, viewerID, models.InviteStatusPending); err != nil {
		return nil, err
	}
	return overview, nil
}

// JoinGym makes gymID the viewer's only active gym.
func (s *GymService) JoinGym(ctx context.Context, viewerID, gymID uint) (*GymDetail, error) {
	if _, err := s.gymRepo.GetByID(ctx, gymID); err != nil {
		return nil, err
	}
	if err := s.gymRepo.Join(ctx, viewerID, gymID); err != nil {
		return nil, err
	}
	return s.GymDetail(ctx, gymID)
}

// LeaveGym deactivates the viewer's active membership, if any.
func (s *GymService) LeaveGym(ctx context.Context, viewerID uint) error {
	membership, err := s.gymRepo.ActiveMembership(ctx, viewerID)
	if err != nil || membership == nil {
		return err
	}
	return s.gymRepo.Leave(ctx, viewerID, membership.GymID)
}

func (s *GymService) activeGym(ctx context.Context, viewerID uint) (*models.GymMembership, error) {
	membership, err := s.gymRepo.ActiveMembership(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, models.NewValidationError("Join a gym first")
	}
	return membership, nil
}

// ReportBusyLevel maps a 1-5 crowd report onto the busy level of the
// viewer's active gym.
func (s *GymService) ReportBusyLevel(ctx context.Context, viewerID uint, report int) (models.BusyLevel, error) {
	level, ok := models.BusyLevelFromReport(report)
	if !ok {
		return "", models.NewValidationError("Busy level must be between 1 and 5")
	}
	membership, err := s.activeGym(ctx, viewerID)
	if err != nil {
		return "", err
	}
	if err := s.gymRepo.UpdateBusyLevel(ctx, membership.GymID, level); err != nil {
		return "", err
	}
	return level, nil
}

// UpsertTopLift records the viewer's best lifts at their active gym.
func (s *GymService) UpsertTopLift(ctx context.Context, in TopLiftInput) (*models.GymTopLifter, error) {
	if in.SquatMax < 0 || in.BenchMax < 0 || in.DeadliftMax < 0 {
		return nil, models.NewValidationError("Lifts cannot be negative")
	}
	membership, err := s.activeGym(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	lifter := &models.GymTopLifter{
		GymID:       membership.GymID,
		UserID:      in.UserID,
		SquatMax:    in.SquatMax,
		BenchMax:    in.BenchMax,
		DeadliftMax: in.DeadliftMax,
	}
	if err := s.gymRepo.UpsertTopLifter(ctx, lifter); err != nil {
		return nil, err
	}
	return lifter, nil
}

func validateInvite(in *InviteInput) error {
	in.WorkoutType = strings.TrimSpace(in.WorkoutType)
	in.Message = strings.TrimSpace(in.Message)
	if in.WorkoutType == "" {
		return models.NewValidationError("Workout type is required")
	}
	if len(in.WorkoutType) > 100 {
		return models.NewValidationError("Workout type too long (max 100 characters)")
	}
	if in.Spots == 0 {
		in.Spots = 1
	}
	if in.Spots < 1 || in.Spots > models.MaxGymInviteFanout {
		return models.NewValidationError("Spots must be between 1 and 20")
	}
	return nil
}

// SendGymInvite invites up to 20 other active members of the viewer's gym.
// ToUserIDs is ignored.
func (s *GymService) SendGymInvite(ctx context.Context, in InviteInput) ([]models.WorkoutInvite, error) {
	if err := validateInvite(&in); err != nil {
		return nil, err
	}
	membership, err := s.activeGym(ctx, in.FromUserID)
	if err != nil {
		return nil, err
	}
	memberIDs, err := s.gymRepo.ActiveMemberIDs(ctx, membership.GymID)
	if err != nil {
		return nil, err
	}

	gymID := membership.GymID
	invites := make([]models.WorkoutInvite, 0, models.MaxGymInviteFanout)
	for _, id := range memberIDs {
		if id == in.FromUserID {
			continue
		}
		if len(invites) == models.MaxGymInviteFanout {
			break
		}
		invites = append(invites, newInvite(in, id, models.InviteTypeGym, &gymID))
	}
	if err := s.inviteRepo.CreateInvites(ctx, invites); err != nil {
		return nil, err
	}
	return invites, nil
}

// SendFriendInvite invites the listed users. Unknown ids and the sender are
// skipped.
func (s *GymService) SendFriendInvite(ctx context.Context, in InviteInput) ([]models.WorkoutInvite, error) {
	if err := validateInvite(&in); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(ctx, dedupe(in.ToUserIDs))
	if err != nil {
		return nil, err
	}
	invites := make([]models.WorkoutInvite, 0, len(users))
	for _, u := range users {
		if u.ID == in.FromUserID {
			continue
		}
		invites = append(invites, newInvite(in, u.ID, models.InviteTypeFriend, nil))
	}
	if err := s.inviteRepo.CreateInvites(ctx, invites); err != nil {
		return nil, err
	}
	return invites, nil
}

func newInvite(in InviteInput, to uint, kind models.InviteType, gymID *uint) models.WorkoutInvite {
	return models.WorkoutInvite{
		FromUserID:    in.FromUserID,
		ToUserID:      to,
		InviteType:    kind,
		GymID:         gymID,
		WorkoutType:   in.WorkoutType,
		ScheduledTime: in.ScheduledTime,
		Spots:         in.Spots,
		Status:        models.InviteStatusPending,
		Message:       in.Message,
	}
}

// RespondInvite accepts the invite when action is "accept" and declines it
// otherwise. Only the recipient may respond.
func (s *GymService) RespondInvite(ctx context.Context, viewerID, inviteID uint, action string) (models.InviteStatus, error) {
	invite, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		return "", err
	}
	if invite.ToUserID != viewerID {
		return "", models.NewNotFoundError("Invite", inviteID)
	}
	status := models.InviteStatusDeclined
	if action == "accept" {
		status = models.InviteStatusAccepted
	}
	if err := s.inviteRepo.UpdateStatus(ctx, inviteID, status); err != nil {
		return "", err
	}
	return status, nil
}

func (s *GymService) Invites(ctx context.Context, viewerID uint, status models.InviteStatus) ([]models.WorkoutInvite, error) {
	return s.inviteRepo.ListReceived(ctx, viewerID, status)
}
