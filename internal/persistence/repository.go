package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// CreateInterview stores the interview, reusing the candidate row for a known email
func (r *Repository) CreateInterview(ctx context.Context, candidate *Candidate, interview *Interview) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Candidate
		err := tx.Where("email = ?", candidate.Email).First(&existing).Error
		switch {
		case err == nil:
			candidate.ID = existing.ID
			if err := tx.Model(&existing).Updates(map[string]any{
				"name":       candidate.Name,
				"phone":      candidate.Phone,
				"experience": candidate.Experience,
				"position":   candidate.Position,
				"location":   candidate.Location,
				"tech_stack": candidate.TechStack,
			}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(candidate).Error; err != nil {
				return err
			}
		default:
			return err
		}

		interview.CandidateID = candidate.ID
		return tx.Omit("Candidate").Create(interview).Error
	})
}

func (r *Repository) SaveQuestionRecord(ctx context.Context, record *QuestionRecord) error {
	return r.DB.WithContext(ctx).Create(record).Error
}

func (r *Repository) UpdateInterview(ctx context.Context, update InterviewUpdate) error {
	fields := map[string]any{
		"status":         update.Status,
		"violations":     update.Violations,
		"difficulty":     update.Difficulty,
		"question_count": update.QuestionCount,
	}
	if update.EndedAt != nil {
		fields["ended_at"] = *update.EndedAt
	}
	if update.Rating != nil {
		fields["candidate_rating"] = *update.Rating
	}

	result := r.DB.WithContext(ctx).
		Model(&Interview{}).
		Where("session_id = ?", update.SessionID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) GetInterview(ctx context.Context, sessionID string) (*Interview, error) {
	var interview Interview
	err := r.DB.WithContext(ctx).
		Preload("Candidate").
		Where("session_id = ?", sessionID).
		First(&interview).Error
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *Repository) ListQuestions(ctx context.Context, sessionID string) ([]QuestionRecord, error) {
	records := []QuestionRecord{}
	err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&records).Error
	return records, err
}

// FindDuplicates reports which of "email" and "phone" already belong to a candidate
func (r *Repository) FindDuplicates(ctx context.Context, email, phone string) ([]string, error) {
	duplicates := []string{}
	db := r.DB.WithContext(ctx)

	if email != "" {
		var count int64
		if err := db.Model(&Candidate{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			duplicates = append(duplicates, "email")
		}
	}
	if phone != "" {
		var count int64
		if err := db.Model(&Candidate{}).Where("phone = ?", phone).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			duplicates = append(duplicates, "phone")
		}
	}
	return duplicates, nil
}

// finished interviews not yet written out by the exporter
func (r *Repository) ListUnexported(ctx context.Context, limit int) ([]Interview, error) {
	interviews := []Interview{}
	query := r.DB.WithContext(ctx).
		Preload("Candidate").
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("exported = ? AND status IN ?", false, []string{"COMPLETED", "TERMINATED"}).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&interviews).Error
	return interviews, err
}

func (r *Repository) MarkExported(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Model(&Interview{}).
		Where("id IN ?", ids).
		Update("exported", true).Error
}
