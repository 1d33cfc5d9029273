package service

import (
	"strings"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
)

const (
	inboxDefaultTake = 50
	inboxMinTake     = 10
	inboxMaxTake     = 200
)

// ContactService 联系留言与后台收件箱
type ContactService struct {
	repo repository.ContactRepository
	now  func() time.Time
}

// NewContactService 创建留言服务
func NewContactService(repo repository.ContactRepository) *ContactService {
	return &ContactService{repo: repo, now: time.Now}
}

// ContactInput 留言输入
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
	UserID  *uint
}

// Submit 提交留言
func (s *ContactService) Submit(input ContactInput) (*models.ContactMessage, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(input.Name)
	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Message)
	if n := len([]rune(name)); n < 2 || n > 80 {
		fields["name"] = "length must be between 2 and 80"
	}
	email, err := NormalizeEmail(input.Email)
	if err != nil || len(email) > 120 {
		fields["email"] = "invalid email"
	}
	if n := len([]rune(subject)); n < 2 || n > 120 {
		fields["subject"] = "length must be between 2 and 120"
	}
	if n := len([]rune(body)); n < 10 || n > 4000 {
		fields["message"] = "length must be between 10 and 4000"
	}
	if len(fields) > 0 {
		return nil, &FieldError{Fields: fields}
	}

	message := &models.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: body,
		Status:  constants.ContactStatusNew,
		UserID:  input.UserID,
	}
	if err := s.repo.Create(message); err != nil {
		return nil, err
	}
	return message, nil
}

// ListInbox 后台收件箱，status 为空或 ALL 表示全部
func (s *ContactService) ListInbox(status string, take int) ([]models.ContactMessage, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "ALL" {
		status = ""
	}
	if status != "" && !isValidContactStatus(status) {
		return nil, ErrInvalidInboxStatus
	}
	if take <= 0 {
		take = inboxDefaultTake
	}
	if take < inboxMinTake {
		take = inboxMinTake
	}
	if take > inboxMaxTake {
		take = inboxMaxTake
	}
	return s.repo.List(repository.ContactListFilter{Status: status, Limit: take})
}

// UpdateStatus 修改处理状态，RESOLVED 记录解决时间，其余清空
func (s *ContactService) UpdateStatus(id uint, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !isValidContactStatus(status) {
		return ErrInvalidInboxStatus
	}
	updates := map[string]interface{}{
		"status":      status,
		"resolved_at": nil,
		"updated_at":  s.now(),
	}
	if status == constants.ContactStatusResolved {
		updates["resolved_at"] = s.now()
	}
	affected, err := s.repo.UpdateStatus(id, updates)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func isValidContactStatus(status string) bool {
	switch status {
	case constants.ContactStatusNew, constants.ContactStatusInProgress, constants.ContactStatusResolved:
		return true
	}
	return false
}
