package trackerService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fintrackhq/fintrack/data/store"
	"github.com/fintrackhq/fintrack/internal/model"
	"github.com/fintrackhq/fintrack/internal/service"
	"github.com/fintrackhq/fintrack/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

type PriceService interface {
	FetchPrice(ctx context.Context, symbol string, assetType model.AssetType) (float64, bool)
	FetchPrices(ctx context.Context, reqs []model.QuoteRequest) map[string]float64
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.Report) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

// TrackerService owns all collections as explicit in-memory state, loaded
// once at startup and written back whole on every mutation. The mutex stands
// in for the original single-threaded event loop: handlers run concurrently
// but mutations never race.
type TrackerService struct {
	mu           sync.Mutex
	store        Store
	prices       PriceService
	reportGen    ReportGenerator
	cloudStorage CloudStorage // nil disables report uploads

	assets    []model.Asset
	trades    []model.OptionTrade
	airdrops  []model.AirdropProject
	manualPnL []model.PnLEntry
	syncCfg   model.SyncConfig
}

func New(ctx context.Context, st Store, prices PriceService, reportGen ReportGenerator, cloudStorage CloudStorage) *TrackerService {
	s := &TrackerService{
		store:        st,
		prices:       prices,
		reportGen:    reportGen,
		cloudStorage: cloudStorage,
	}

	s.assets = loadSlice[model.Asset](ctx, st, store.KeyAssets)
	s.trades = loadSlice[model.OptionTrade](ctx, st, store.KeyTrades)
	s.airdrops = loadSlice[model.AirdropProject](ctx, st, store.KeyAirdrops)
	s.manualPnL = loadSlice[model.PnLEntry](ctx, st, store.KeyManualPnL)
	s.syncCfg = loadValue[model.SyncConfig](ctx, st, store.KeySyncConfig)

	return s
}

// loadSlice returns the stored collection, or an empty one on missing key or
// parse failure. The default is never persisted back.
func loadSlice[T any](ctx context.Context, st Store, key string) []T {
	return loadValueOr(ctx, st, key, []T{})
}

func loadValue[T any](ctx context.Context, st Store, key string) T {
	var def T
	return loadValueOr(ctx, st, key, def)
}

func loadValueOr[T any](ctx context.Context, st Store, key string, def T) T {
	raw, err := st.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("can't load stored value, using default", slog.String("key", key), slog.String("err", err.Error()))
		}
		return def
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		slog.Error("stored value is corrupt, using default", slog.String("key", key), slog.String("err", err.Error()))
		return def
	}

	return value
}

// persist serializes and overwrites one key. A failed write is logged and
// swallowed: the in-memory value stays authoritative for the session.
func (s *TrackerService) persist(ctx context.Context, key string, value any) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	raw, err := json.Marshal(value)
	if err != nil {
		slog.Error("can't marshal value for store", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
		return
	}

	if err := s.store.Save(ctx, key, raw); err != nil {
		slog.Error("store save failed, in-memory value stays authoritative", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
	}
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ---- assets ----

func (s *TrackerService) ListAssets(ctx context.Context) []model.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Asset{}, s.assets...)
}

func (s *TrackerService) CreateAsset(ctx context.Context, asset model.Asset) (model.Asset, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.CreateAsset"

	if asset.Name == "" {
		return model.Asset{}, fmt.Errorf("%w: asset name is required", service.ErrInvalidArgument)
	}
	if !asset.Type.Valid() {
		return model.Asset{}, fmt.Errorf("%w: unknown asset type %q", service.ErrInvalidArgument, asset.Type)
	}
	if asset.Quantity < 0 {
		return model.Asset{}, fmt.Errorf("%w: quantity can't be negative", service.ErrInvalidArgument)
	}

	asset.ID = uuid.NewString()
	if asset.Currency == "" {
		asset.Currency = "USD"
	}

	// best effort, outside the lock: a missing quote leaves the price at
	// zero until the next refresh
	if asset.CurrentPrice == 0 && asset.Type != model.AssetTypeCash {
		if price, ok := s.prices.FetchPrice(ctx, asset.DisplayTicker(), asset.Type); ok {
			asset.CurrentPrice = price
			asset.LastUpdated = nowRFC3339()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.assets = append(s.assets, asset)
	s.persist(ctx, store.KeyAssets, s.assets)

	slog.Debug("asset created", slog.String("rqID", rqID), slog.String("op", op), slog.String("id", asset.ID))

	return asset, nil
}

func (s *TrackerService) UpdateAsset(ctx context.Context, asset model.Asset) (model.Asset, error) {
	if !asset.Type.Valid() {
		return model.Asset{}, fmt.Errorf("%w: unknown asset type %q", service.ErrInvalidArgument, asset.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.assets {
		if s.assets[i].ID == asset.ID {
			s.assets[i] = asset
			s.persist(ctx, store.KeyAssets, s.assets)
			return asset, nil
		}
	}

	return model.Asset{}, service.ErrNotFound
}

func (s *TrackerService) DeleteAsset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.assets {
		if s.assets[i].ID == id {
			s.assets = append(s.assets[:i], s.assets[i+1:]...)
			s.persist(ctx, store.KeyAssets, s.assets)
			return nil
		}
	}

	return service.ErrNotFound
}

// AssetSummary recomputes totals and allocation slices from the current
// collection; nothing derived is ever persisted.
func (s *TrackerService) AssetSummary(ctx context.Context) model.AssetSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := model.AssetSummary{AssetCount: len(s.assets)}

	byType := map[model.AssetType]decimal.Decimal{}
	for _, asset := range s.assets {
		value := asset.Value()
		summary.TotalValue = summary.TotalValue.Add(value)
		byType[asset.Type] = byType[asset.Type].Add(value)
	}

	for _, t := range []model.AssetType{model.AssetTypeStock, model.AssetTypeCrypto, model.AssetTypeCash} {
		value, ok := byType[t]
		if !ok {
			continue
		}
		slice := model.AllocationSlice{Type: t, Value: value}
		if !summary.TotalValue.IsZero() {
			slice.Percent = value.Div(summary.TotalValue).Mul(decimal.NewFromInt(100)).Round(2)
		}
		summary.Allocations = append(summary.Allocations, slice)
	}

	return summary
}

// RefreshPrices fetches fresh quotes for all priceable assets and applies
// them back onto the collection. Prices that match no asset are returned to
// the caller instead of being silently dropped.
func (s *TrackerService) RefreshPrices(ctx context.Context) (updated int, unmatched map[string]float64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.RefreshPrices"

	slog.Debug("RefreshPrices start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RefreshPrices finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("updated", updated))
	}()

	s.mu.Lock()
	reqs := make([]model.QuoteRequest, 0, len(s.assets))
	for _, asset := range s.assets {
		if asset.Type == model.AssetTypeCash {
			continue
		}
		reqs = append(reqs, model.QuoteRequest{
			Symbol: asset.DisplayTicker(),
			Name:   asset.Name,
			Type:   asset.Type,
		})
	}
	s.mu.Unlock()

	if len(reqs) == 0 {
		return 0, map[string]float64{}, nil
	}

	// fetched outside the lock, applied inside it
	prices := s.prices.FetchPrices(ctx, reqs)

	s.mu.Lock()
	defer s.mu.Unlock()

	unmatched = map[string]float64{}
	now := nowRFC3339()

	for symbol, price := range prices {
		idx := s.matchAsset(symbol)
		if idx < 0 {
			unmatched[symbol] = price
			continue
		}
		s.assets[idx].CurrentPrice = price
		s.assets[idx].LastUpdated = now
		updated++
	}

	if updated > 0 {
		s.persist(ctx, store.KeyAssets, s.assets)
	}

	return updated, unmatched, nil
}

// matchAsset resolves a returned price key to an asset index: ticker match
// first, then display name, both case-insensitive.
func (s *TrackerService) matchAsset(symbol string) int {
	for i := range s.assets {
		if strings.EqualFold(s.assets[i].DisplayTicker(), symbol) {
			return i
		}
	}
	for i := range s.assets {
		if strings.EqualFold(s.assets[i].Name, symbol) {
			return i
		}
	}
	return -1
}

// ---- option trades ----

func (s *TrackerService) ListTrades(ctx context.Context) []model.OptionTrade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OptionTrade{}, s.trades...)
}

func (s *TrackerService) CreateTrade(ctx context.Context, trade model.OptionTrade) (model.OptionTrade, error) {
	if err := validateTrade(trade); err != nil {
		return model.OptionTrade{}, err
	}

	trade.ID = uuid.NewString()
	if trade.Status == "" {
		trade.Status = model.TradeStatusOpen
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades = append(s.trades, trade)
	s.persist(ctx, store.KeyTrades, s.trades)

	return trade, nil
}

func (s *TrackerService) UpdateTrade(ctx context.Context, trade model.OptionTrade) (model.OptionTrade, error) {
	if err := validateTrade(trade); err != nil {
		return model.OptionTrade{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.trades {
		if s.trades[i].ID == trade.ID {
			s.trades[i] = trade
			s.persist(ctx, store.KeyTrades, s.trades)
			return trade, nil
		}
	}

	return model.OptionTrade{}, service.ErrNotFound
}

func (s *TrackerService) DeleteTrade(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.trades {
		if s.trades[i].ID == id {
			s.trades = append(s.trades[:i], s.trades[i+1:]...)
			s.persist(ctx, store.KeyTrades, s.trades)
			return nil
		}
	}

	return service.ErrNotFound
}

func validateTrade(trade model.OptionTrade) error {
	if trade.Ticker == "" {
		return fmt.Errorf("%w: trade ticker is required", service.ErrInvalidArgument)
	}
	if !trade.Type.Valid() {
		return fmt.Errorf("%w: unknown trade type %q", service.ErrInvalidArgument, trade.Type)
	}
	if trade.Status != "" && !trade.Status.Valid() {
		return fmt.Errorf("%w: unknown trade status %q", service.ErrInvalidArgument, trade.Status)
	}
	return nil
}

// TradeInsights decorates every trade with its ROI and, when the ticker is
// also held as an asset with a known price, the distance to strike.
func (s *TrackerService) TradeInsights(ctx context.Context) []model.TradeInsight {
	s.mu.Lock()
	defer s.mu.Unlock()

	insights := make([]model.TradeInsight, 0, len(s.trades))
	for _, trade := range s.trades {
		insight := model.TradeInsight{OptionTrade: trade, ROI: trade.ROI()}

		if idx := s.matchAsset(trade.Ticker); idx >= 0 && s.assets[idx].CurrentPrice > 0 {
			distance := trade.DistanceToStrike(s.assets[idx].CurrentPrice)
			insight.Distance = &distance
		}

		insights = append(insights, insight)
	}

	return insights
}

func (s *TrackerService) TradeStats(ctx context.Context) model.TradeStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.TradeStats{}
	for _, trade := range s.trades {
		switch trade.Status {
		case model.TradeStatusOpen:
			stats.OpenCount++
			stats.ActiveCollateral = stats.ActiveCollateral.Add(decimal.NewFromFloat(trade.CollateralOrCost))
		case model.TradeStatusClosed:
			stats.ClosedCount++
		case model.TradeStatusExpired:
			stats.ExpiredCount++
		}
		stats.TotalPremium = stats.TotalPremium.Add(decimal.NewFromFloat(trade.Premium))
	}

	return stats
}

// ---- airdrops ----

func (s *TrackerService) ListAirdrops(ctx context.Context) []model.AirdropProject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AirdropProject{}, s.airdrops...)
}

func (s *TrackerService) CreateAirdrop(ctx context.Context, project model.AirdropProject) (model.AirdropProject, error) {
	if project.Name == "" {
		return model.AirdropProject{}, fmt.Errorf("%w: project name is required", service.ErrInvalidArgument)
	}

	project.ID = uuid.NewString()
	if project.Status == "" {
		project.Status = model.AirdropStatusNew
	}
	if project.Priority == "" {
		project.Priority = model.AirdropPriorityMedium
	}
	if !project.Status.Valid() {
		return model.AirdropProject{}, fmt.Errorf("%w: unknown airdrop status %q", service.ErrInvalidArgument, project.Status)
	}
	if !project.Priority.Valid() {
		return model.AirdropProject{}, fmt.Errorf("%w: unknown airdrop priority %q", service.ErrInvalidArgument, project.Priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.airdrops = append(s.airdrops, project)
	s.persist(ctx, store.KeyAirdrops, s.airdrops)

	return project, nil
}

func (s *TrackerService) UpdateAirdrop(ctx context.Context, project model.AirdropProject) (model.AirdropProject, error) {
	if !project.Status.Valid() {
		return model.AirdropProject{}, fmt.Errorf("%w: unknown airdrop status %q", service.ErrInvalidArgument, project.Status)
	}
	if !project.Priority.Valid() {
		return model.AirdropProject{}, fmt.Errorf("%w: unknown airdrop priority %q", service.ErrInvalidArgument, project.Priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.airdrops {
		if s.airdrops[i].ID == project.ID {
			s.airdrops[i] = project
			s.persist(ctx, store.KeyAirdrops, s.airdrops)
			return project, nil
		}
	}

	return model.AirdropProject{}, service.ErrNotFound
}

func (s *TrackerService) DeleteAirdrop(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.airdrops {
		if s.airdrops[i].ID == id {
			s.airdrops = append(s.airdrops[:i], s.airdrops[i+1:]...)
			s.persist(ctx, store.KeyAirdrops, s.airdrops)
			return nil
		}
	}

	return service.ErrNotFound
}

// ---- manual P&L ----

func (s *TrackerService) ListPnLEntries(ctx context.Context) []model.PnLEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.PnLEntry{}, s.manualPnL...)
}

func (s *TrackerService) CreatePnLEntry(ctx context.Context, entry model.PnLEntry) (model.PnLEntry, error) {
	if err := validateMonth(entry.Month); err != nil {
		return model.PnLEntry{}, err
	}

	entry.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.manualPnL = append(s.manualPnL, entry)
	s.persist(ctx, store.KeyManualPnL, s.manualPnL)

	return entry, nil
}

func (s *TrackerService) UpdatePnLEntry(ctx context.Context, entry model.PnLEntry) (model.PnLEntry, error) {
	if err := validateMonth(entry.Month); err != nil {
		return model.PnLEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.manualPnL {
		if s.manualPnL[i].ID == entry.ID {
			s.manualPnL[i] = entry
			s.persist(ctx, store.KeyManualPnL, s.manualPnL)
			return entry, nil
		}
	}

	return model.PnLEntry{}, service.ErrNotFound
}

func (s *TrackerService) DeletePnLEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.manualPnL {
		if s.manualPnL[i].ID == id {
			s.manualPnL = append(s.manualPnL[:i], s.manualPnL[i+1:]...)
			s.persist(ctx, store.KeyManualPnL, s.manualPnL)
			return nil
		}
	}

	return service.ErrNotFound
}

func validateMonth(month string) error {
	if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("%w: month must be YYYY-MM", service.ErrInvalidArgument)
	}
	return nil
}

// MonthlyPnL buckets manual entries together with option P&L realized in the
// same month. A closed or expired short put realizes its premium; a closed
// long call with a recorded close price realizes close minus premium.
func (s *TrackerService) MonthlyPnL(ctx context.Context) []model.MonthlyPnL {
	s.mu.Lock()
	defer s.mu.Unlock()

	months := map[string]*model.MonthlyPnL{}
	bucket := func(month string) *model.MonthlyPnL {
		if m, ok := months[month]; ok {
			return m
		}
		m := &model.MonthlyPnL{Month: month}
		months[month] = m
		return m
	}

	for _, entry := range s.manualPnL {
		m := bucket(entry.Month)
		m.Manual = m.Manual.Add(decimal.NewFromFloat(entry.Amount))
	}

	for _, trade := range s.trades {
		if trade.Status == model.TradeStatusOpen {
			continue
		}
		month := tradeMonth(trade)
		if month == "" {
			continue
		}

		var realized decimal.Decimal
		switch trade.Type {
		case model.TradeTypeShortPut:
			realized = decimal.NewFromFloat(trade.Premium)
		case model.TradeTypeLongCall:
			if trade.Status != model.TradeStatusClosed || trade.ClosePrice == nil {
				continue
			}
			realized = decimal.NewFromFloat(*trade.ClosePrice).Sub(decimal.NewFromFloat(trade.Premium))
		}

		m := bucket(month)
		m.Options = m.Options.Add(realized)
	}

	result := make([]model.MonthlyPnL, 0, len(months))
	for _, m := range months {
		m.Total = m.Manual.Add(m.Options)
		result = append(result, *m)
	}

	sortMonthly(result)

	return result
}

func tradeMonth(trade model.OptionTrade) string {
	if len(trade.ExpiryDate) >= 7 {
		return trade.ExpiryDate[:7]
	}
	return ""
}

func sortMonthly(months []model.MonthlyPnL) {
	for i := 1; i < len(months); i++ {
		for j := i; j > 0 && months[j].Month < months[j-1].Month; j-- {
			months[j], months[j-1] = months[j-1], months[j]
		}
	}
}

// ---- sync config & dataset ----

func (s *TrackerService) GetSyncConfig(ctx context.Context) model.SyncConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncCfg
}

func (s *TrackerService) SetSyncConfig(ctx context.Context, cfg model.SyncConfig) model.SyncConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	// responses mask the token, so a client round-tripping the config it
	// read sends an empty one; that must not wipe the stored token
	if cfg.GithubToken == "" {
		cfg.GithubToken = s.syncCfg.GithubToken
	}
	if cfg.LastSyncTime == "" {
		cfg.LastSyncTime = s.syncCfg.LastSyncTime
	}
	s.syncCfg = cfg
	s.persist(ctx, store.KeySyncConfig, s.syncCfg)

	return s.syncCfg
}

// SetSyncMeta records the gist id and sync time after a successful upload.
func (s *TrackerService) SetSyncMeta(ctx context.Context, gistID, lastSyncTime string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncCfg.GistID = gistID
	s.syncCfg.LastSyncTime = lastSyncTime
	s.persist(ctx, store.KeySyncConfig, s.syncCfg)
}

// Snapshot copies the full dataset for backup.
func (s *TrackerService) Snapshot(ctx context.Context) model.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.Dataset{
		Assets:    append([]model.Asset{}, s.assets...),
		Trades:    append([]model.OptionTrade{}, s.trades...),
		ManualPnL: append([]model.PnLEntry{}, s.manualPnL...),
		Airdrops:  append([]model.AirdropProject{}, s.airdrops...),
		Timestamp: nowRFC3339(),
	}
}

// datasetPatch distinguishes a key absent from the payload (leave local data
// untouched) from a key explicitly present with an empty list (overwrite).
type datasetPatch struct {
	Assets    *[]model.Asset          `json:"assets"`
	Trades    *[]model.OptionTrade    `json:"trades"`
	ManualPnL *[]model.PnLEntry       `json:"manualPnL"`
	Airdrops  *[]model.AirdropProject `json:"airdrops"`
}

// RestoreDataset replaces each collection independently, only for keys
// present in the payload, so a partial or older backup can't wipe newer
// local data for the fields it omits.
func (s *TrackerService) RestoreDataset(ctx context.Context, payload []byte) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.RestoreDataset"

	patch := datasetPatch{}
	if err := json.Unmarshal(payload, &patch); err != nil {
		slog.Error("can't unmarshal backup payload", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("parse backup payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Assets != nil {
		s.assets = *patch.Assets
		s.persist(ctx, store.KeyAssets, s.assets)
	}
	if patch.Trades != nil {
		s.trades = *patch.Trades
		s.persist(ctx, store.KeyTrades, s.trades)
	}
	if patch.ManualPnL != nil {
		s.manualPnL = *patch.ManualPnL
		s.persist(ctx, store.KeyManualPnL, s.manualPnL)
	}
	if patch.Airdrops != nil {
		s.airdrops = *patch.Airdrops
		s.persist(ctx, store.KeyAirdrops, s.airdrops)
	}

	slog.Info("dataset restored", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}
