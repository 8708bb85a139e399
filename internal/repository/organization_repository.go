package repository

import (
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(org *model.Organization) error {
	return r.db.Create(org).Error
}

func (r *OrganizationRepository) FindByID(id string) (*model.Organization, error) {
	var org model.Organization
	err := r.db.Where("id = ?", id).First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) FindBySlug(slug string) (*model.Organization, error) {
	var org model.Organization
	err := r.db.Where("slug = ?", slug).First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) List() ([]model.Organization, error) {
	var orgs []model.Organization
	err := r.db.Order("created_at ASC").Find(&orgs).Error
	return orgs, err
}

func (r *OrganizationRepository) Update(org *model.Organization) error {
	return r.db.Save(org).Error
}
