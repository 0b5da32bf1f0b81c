// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package posservice

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/metrics"
	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/provider"
)

// SyncMenu pulls the location's catalog from its POS. An incremental sync
// of a menu that was never synced runs as a full sync. A failed sync
// returns the finalized log together with a *SyncError.
func (s *Service) SyncMenu(ctx context.Context, locationID string, fullSync bool) (*models.SyncLog, error) {
	lockAny, _ := s.syncLocks.LoadOrStore(locationID, &sync.Mutex{})
	lock := lockAny.(*sync.Mutex)
	if !lock.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer lock.Unlock()

	loc, p, err := s.providerFor(ctx, locationID)
	if err != nil {
		return nil, err
	}
	menu, err := s.menus.EnsureMenu(ctx, loc.ID, loc.Name+" Menu")
	if err != nil {
		return nil, err
	}

	syncType := models.SyncTypeFull
	if !fullSync && menu.LastSyncedAt != nil {
		syncType = models.SyncTypeIncremental
	}
	log := &models.SyncLog{LocationID: loc.ID, SyncType: syncType, StartedAt: s.now().UTC()}
	if err := s.syncLogs.CreateSyncLog(ctx, log); err != nil {
		return nil, err
	}

	target := &audit.Target{ID: loc.ID, Type: "location", Name: loc.Name}
	s.record(ctx, audit.EventTypeMenuSyncStarted, audit.OutcomeSuccess, target, "menu sync started",
		map[string]string{"syncLogId": log.ID, "syncType": string(syncType)})
	logger := logging.Ctx(ctx).With().Str(logging.FieldLocationID, loc.ID).Str("sync_log_id", log.ID).
		Str("sync_type", string(syncType)).Logger()
	logger.Info().Msg("menu sync started")

	syncErr := s.runSync(ctx, p, loc, menu, log)

	completed := s.now().UTC()
	log.CompletedAt = &completed
	if syncErr != nil {
		log.Status = models.SyncStatusFailed
		log.ErrorMessage = syncErr.Error()
	} else {
		log.Status = models.SyncStatusCompleted
	}
	// Finalize even when the caller has gone away.
	if err := s.syncLogs.FinalizeSyncLog(context.WithoutCancel(ctx), log); err != nil {
		logger.Error().Err(err).Msg("failed to finalize sync log")
	}
	metrics.RecordMenuSync(string(syncType), completed.Sub(log.StartedAt), log.ItemsSynced, syncErr)
	if s.notifier != nil {
		s.notifier.BroadcastMenuSync(log)
	}

	if syncErr != nil {
		logger.Warn().Err(syncErr).Msg("menu sync failed")
		s.record(ctx, audit.EventTypeMenuSyncFailed, audit.OutcomeFailure, target, syncErr.Error(),
			map[string]string{"syncLogId": log.ID})
		return log, &SyncError{SyncLogID: log.ID, Err: syncErr}
	}

	logger.Info().Int("items", log.ItemsSynced).Int("modifiers", log.ModifiersSynced).
		Int("deleted", log.ItemsDeleted).Msg("menu sync completed")
	s.record(ctx, audit.EventTypeMenuSyncCompleted, audit.OutcomeSuccess, target, "menu sync completed",
		map[string]int{"itemsSynced": log.ItemsSynced, "modifiersSynced": log.ModifiersSynced, "itemsDeleted": log.ItemsDeleted})
	return log, nil
}

func (s *Service) runSync(ctx context.Context, p provider.Provider, loc *models.Location, menu *models.Menu, log *models.SyncLog) error {
	var items []provider.POSMenuItem
	var deleted []string

	if log.SyncType == models.SyncTypeFull {
		res, err := p.SyncFullMenu(ctx, loc.POSLocationID)
		if err != nil {
			return err
		}
		items = res.Items
		log.ModifiersSynced = len(res.Modifiers)
	} else {
		res, err := p.SyncMenuUpdates(ctx, loc.POSLocationID, *menu.LastSyncedAt)
		if err != nil {
			return err
		}
		items = res.Items
		deleted = res.DeletedItemIDs
		log.ModifiersSynced = len(res.Modifiers)
	}

	for i := range items {
		it := items[i]
		local := &models.MenuItem{
			MenuID:      menu.ID,
			LocationID:  loc.ID,
			POSItemID:   it.ID,
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			CategoryID:  it.CategoryID,
		}
		local.SetAvailability(it.IsAvailable)
		if _, err := s.menus.UpsertMenuItemByPOSID(ctx, local); err != nil {
			return err
		}
		log.ItemsSynced++
	}

	if len(deleted) > 0 {
		n, err := s.menus.MarkItemsUnavailableByPOSIDs(ctx, loc.ID, deleted)
		if err != nil {
			return err
		}
		log.ItemsDeleted = int(n)
	}

	if log.SyncType == models.SyncTypeFull {
		if err := s.reconcileStock(ctx, p, loc); err != nil {
			return err
		}
	}

	// The next delta starts where this fetch started, so vendor edits made
	// while the sync was running are picked up again.
	return s.menus.SetMenuSynced(ctx, menu.ID, log.StartedAt)
}

// reconcileStock applies the POS out-of-stock list on top of the catalog,
// which does not always carry 86'd state.
func (s *Service) reconcileStock(ctx context.Context, p provider.Provider, loc *models.Location) error {
	ids, err := p.GetUnavailableItems(ctx, loc.POSLocationID)
	if err != nil {
		return fmt.Errorf("fetch unavailable items: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	n, err := s.menus.MarkItemsUnavailableByPOSIDs(ctx, loc.ID, ids)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Debug().Str(logging.FieldLocationID, loc.ID).Int("reported", len(ids)).Int64("marked", n).
		Msg("stock reconciled after full sync")
	return nil
}
