package repository

import (
	"context"

	"github.com/kendall-kelly/estate-inquiries-api/models"
	"gorm.io/gorm"
)

// DirectoryRepository reads the users, staff profiles and properties that
// inquiries refer to. It never writes them.
type DirectoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a directory over the given connection
func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// FindUser loads a user by primary key
func (r *DirectoryRepository) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindUserByAuth0ID loads the user behind a token subject
func (r *DirectoryRepository) FindUserByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindAgent loads a staff profile by id
func (r *DirectoryRepository) FindAgent(ctx context.Context, id uint) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).First(&agent, id).Error; err != nil {
		return nil, translate(err)
	}
	return &agent, nil
}

// FindAgentByLinkedUser loads the staff profile linked to a user account
func (r *DirectoryRepository) FindAgentByLinkedUser(ctx context.Context, userID uint) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).Where("linked_user_id = ?", userID).First(&agent).Error; err != nil {
		return nil, translate(err)
	}
	return &agent, nil
}

// FindProperty loads a listing by id
func (r *DirectoryRepository) FindProperty(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	if err := r.db.WithContext(ctx).First(&property, id).Error; err != nil {
		return nil, translate(err)
	}
	return &property, nil
}
