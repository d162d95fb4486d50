// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/danakm/tidesweep/internal/models"
)

const (
	analysisStoreKey = "local:reports"
	campaignStoreKey = "local:campaigns"

	maxStoredReports   = 50
	maxStoredCampaigns = 20
)

// ReportStore keeps the caller's own artifacts: analysis reports produced
// through this gateway and campaigns created through it. Both lists are
// capped; the oldest entries fall off. Each list lives as one JSON blob in
// the shared BadgerDB, guarded by a mutex because updates are
// read-modify-write.
type ReportStore struct {
	mu sync.Mutex
	db *badger.DB
}

// NewReportStore wraps an open BadgerDB handle. The caller owns the handle.
func NewReportStore(db *badger.DB) *ReportStore {
	return &ReportStore{db: db}
}

// AddAnalysis records an analysis report, replacing any entry with the
// same ID and trimming the list to the newest 50.
func (s *ReportStore) AddAnalysis(report *models.TrashReport) error {
	if report == nil || report.ID == "" {
		return errors.New("analysis report must have an ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var reports []*models.TrashReport
	if err := s.load(analysisStoreKey, &reports); err != nil {
		return err
	}

	reports = upsertReport(reports, report)
	if len(reports) > maxStoredReports {
		reports = reports[len(reports)-maxStoredReports:]
	}
	return s.store(analysisStoreKey, reports)
}

// Analyses returns the stored analysis reports, oldest first.
func (s *ReportStore) Analyses() ([]*models.TrashReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reports []*models.TrashReport
	if err := s.load(analysisStoreKey, &reports); err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []*models.TrashReport{}
	}
	return reports, nil
}

// AddOwnCampaign records a campaign created through this gateway,
// replacing any entry with the same ID and trimming to the newest 20.
func (s *ReportStore) AddOwnCampaign(campaign *models.Campaign) error {
	if campaign == nil || campaign.ID == "" {
		return errors.New("campaign must have an ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var campaigns []*models.Campaign
	if err := s.load(campaignStoreKey, &campaigns); err != nil {
		return err
	}

	campaigns = upsertCampaign(campaigns, campaign)
	if len(campaigns) > maxStoredCampaigns {
		campaigns = campaigns[len(campaigns)-maxStoredCampaigns:]
	}
	return s.store(campaignStoreKey, campaigns)
}

// OwnCampaigns returns the caller's created campaigns, oldest first.
func (s *ReportStore) OwnCampaigns() ([]*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var campaigns []*models.Campaign
	if err := s.load(campaignStoreKey, &campaigns); err != nil {
		return nil, err
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}
	return campaigns, nil
}

func (s *ReportStore) load(key string, out interface{}) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read local store %s: %w", key, err)
	}
	return nil
}

func (s *ReportStore) store(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal local store %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// upsertReport replaces a same-ID entry in place or appends.
func upsertReport(reports []*models.TrashReport, report *models.TrashReport) []*models.TrashReport {
	for i, existing := range reports {
		if existing.ID == report.ID {
			reports[i] = report
			return reports
		}
	}
	return append(reports, report)
}

func upsertCampaign(campaigns []*models.Campaign, campaign *models.Campaign) []*models.Campaign {
	for i, existing := range campaigns {
		if existing.ID == campaign.ID {
			campaigns[i] = campaign
			return campaigns
		}
	}
	return append(campaigns, campaign)
}
