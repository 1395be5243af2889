package lifecycle

import (
	"fmt"
	"time"

	clientRepo "trustwork/database/repository/client"
	profileRepo "trustwork/database/repository/profile"
	providerRepo "trustwork/database/repository/provider"
	warningRepo "trustwork/database/repository/warning"
	"trustwork/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// In-memory repositories that interpret the subset of update documents the
// engine produces. Missing ids wrap mongo.ErrNoDocuments like the real repos.

type fakeProviderRepo struct {
	byID map[string]*models.ProviderProfile

	// beforeGuarded runs against the stored document right before a guarded
	// update is evaluated, letting tests interleave a concurrent write.
	beforeGuarded func(p *models.ProviderProfile)
}

func newFakeProviderRepo(ps ...*models.ProviderProfile) *fakeProviderRepo {
	r := &fakeProviderRepo{byID: map[string]*models.ProviderProfile{}}
	for _, p := range ps {
		r.byID[p.ID] = p
	}
	return r
}

func (r *fakeProviderRepo) get(id string) (*models.ProviderProfile, error) {
	p, ok := r.byID[id]
	if !ok || p.IsDeleted {
		return nil, fmt.Errorf("provider profile %s: %w", id, mongo.ErrNoDocuments)
	}
	return p, nil
}

func (r *fakeProviderRepo) GetByID(id string) (*models.ProviderProfile, error) {
	p, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProviderRepo) GetByProfileID(profileID string) (*models.ProviderProfile, error) {
	for _, p := range r.byID {
		if p.ProfileID == profileID && !p.IsDeleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("provider profile for %s: %w", profileID, mongo.ErrNoDocuments)
}

func (r *fakeProviderRepo) Create(p *models.ProviderProfile) error {
	r.byID[p.ID] = p
	return nil
}

func (r *fakeProviderRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	_, err := r.ApplyUpdate(id, nil, updateDoc)
	return err
}

func (r *fakeProviderRepo) ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.ProviderProfile, error) {
	p, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if guard != nil && r.beforeGuarded != nil {
		r.beforeGuarded(p)
	}
	for k, v := range guard {
		switch k {
		case "penaltiesCount":
			if p.PenaltiesCount != v.(int) {
				return nil, fmt.Errorf("guard failed: %w", mongo.ErrNoDocuments)
			}
		}
	}
	if inc, ok := updateDoc["$inc"].(bson.M); ok {
		if _, ok := inc["penaltiesCount"]; ok {
			p.PenaltiesCount++
		}
		if _, ok := inc["riskFactors.recentComplaints"]; ok {
			p.RiskFactors.RecentComplaints++
		}
		if _, ok := inc["riskFactors.negativeReviews"]; ok {
			p.RiskFactors.NegativeReviews++
		}
	}
	if set, ok := updateDoc["$set"].(bson.M); ok {
		for k, v := range set {
			switch k {
			case "riskLevel":
				p.RiskLevel = v.(models.RiskLevel)
			case "mitigationMeasures":
				p.MitigationMeasures = v.(models.MitigationMeasures)
			case "status":
				p.Status = v.(models.ProviderStatus)
			case "statusReason":
				p.StatusReason = v.(string)
			case "assessedBy":
				p.AssessedBy = v.(string)
			case "lastPenaltyDate":
				t := v.(time.Time)
				p.LastPenaltyDate = &t
			case "lastRiskAssessment":
				t := v.(time.Time)
				p.LastRiskAssessment = &t
			case "nextAssessmentDate":
				t := v.(time.Time)
				p.NextAssessmentDate = &t
			case "updatedAt":
				p.UpdatedAt = v.(time.Time)
			}
		}
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProviderRepo) IncrementPenalties(id string, at time.Time) (*models.ProviderProfile, error) {
	return r.ApplyUpdate(id, nil, bson.M{
		"$inc": bson.M{"penaltiesCount": 1},
		"$set": bson.M{"lastPenaltyDate": at, "updatedAt": at},
	})
}

func (r *fakeProviderRepo) IncrementRiskCounter(id, counter string) error {
	return r.UpdateWithDocument(id, bson.M{"$inc": bson.M{"riskFactors." + counter: 1}})
}

func (r *fakeProviderRepo) List(filter bson.M, page, limit int64) ([]models.ProviderProfile, error) {
	var out []models.ProviderProfile
	for _, p := range r.byID {
		if !p.IsDeleted {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProviderRepo) ListOverdueAssessments(now time.Time) ([]models.ProviderProfile, error) {
	var out []models.ProviderProfile
	for _, p := range r.byID {
		if !p.IsDeleted && p.NextAssessmentDate != nil && p.NextAssessmentDate.Before(now) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProviderRepo) CountByRiskLevel() (map[models.RiskLevel]int64, error) {
	out := map[models.RiskLevel]int64{}
	for _, p := range r.byID {
		if !p.IsDeleted {
			out[p.RiskLevel]++
		}
	}
	return out, nil
}

var _ providerRepo.ProviderProfileRepository = (*fakeProviderRepo)(nil)

type fakeClientRepo struct {
	byID map[string]*models.ClientProfile

	beforeGuarded func(c *models.ClientProfile)
}

func newFakeClientRepo(cs ...*models.ClientProfile) *fakeClientRepo {
	r := &fakeClientRepo{byID: map[string]*models.ClientProfile{}}
	for _, c := range cs {
		r.byID[c.ID] = c
	}
	return r
}

func (r *fakeClientRepo) get(id string) (*models.ClientProfile, error) {
	c, ok := r.byID[id]
	if !ok || c.IsDeleted {
		return nil, fmt.Errorf("client profile %s: %w", id, mongo.ErrNoDocuments)
	}
	return c, nil
}

func (r *fakeClientRepo) GetByID(id string) (*models.ClientProfile, error) {
	c, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) GetByProfileID(profileID string) (*models.ClientProfile, error) {
	for _, c := range r.byID {
		if c.ProfileID == profileID && !c.IsDeleted {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("client profile for %s: %w", profileID, mongo.ErrNoDocuments)
}

func (r *fakeClientRepo) Create(c *models.ClientProfile) error {
	r.byID[c.ID] = c
	return nil
}

func (r *fakeClientRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	_, err := r.ApplyUpdate(id, nil, updateDoc)
	return err
}

func (r *fakeClientRepo) ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.ClientProfile, error) {
	c, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if guard != nil && r.beforeGuarded != nil {
		r.beforeGuarded(c)
	}
	for k, v := range guard {
		switch k {
		case "bookings.total":
			if c.Bookings.Total != v.(int) {
				return nil, fmt.Errorf("guard failed: %w", mongo.ErrNoDocuments)
			}
		}
	}
	if inc, ok := updateDoc["$inc"].(bson.M); ok {
		for k, v := range inc {
			switch k {
			case "bookings.total":
				c.Bookings.Total++
			case "bookings.completed":
				c.Bookings.Completed++
			case "bookings.cancelled":
				c.Bookings.Cancelled++
			case "bookings.disputed":
				c.Bookings.Disputed++
			case "totalSpend":
				c.TotalSpend += v.(float64)
			}
		}
	}
	if push, ok := updateDoc["$push"].(bson.M); ok {
		if s, ok := push["suspensionHistory"].(models.Suspension); ok {
			c.SuspensionHistory = append(c.SuspensionHistory, s)
		}
	}
	if set, ok := updateDoc["$set"].(bson.M); ok {
		for k, v := range set {
			switch k {
			case "trustScore":
				c.TrustScore = v.(int)
			case "riskLevel":
				c.RiskLevel = v.(models.RiskLevel)
			case "loyaltyTier":
				c.LoyaltyTier = v.(models.LoyaltyTier)
			case "updatedAt":
				c.UpdatedAt = v.(time.Time)
			}
		}
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) List(filter bson.M, page, limit int64) ([]models.ClientProfile, error) {
	var out []models.ClientProfile
	for _, c := range r.byID {
		if !c.IsDeleted {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) CountByRiskLevel() (map[models.RiskLevel]int64, error) {
	out := map[models.RiskLevel]int64{}
	for _, c := range r.byID {
		if !c.IsDeleted {
			out[c.RiskLevel]++
		}
	}
	return out, nil
}

var _ clientRepo.ClientProfileRepository = (*fakeClientRepo)(nil)

type fakeWarningRepo struct {
	byID map[string]*models.Warning
}

func newFakeWarningRepo(ws ...*models.Warning) *fakeWarningRepo {
	r := &fakeWarningRepo{byID: map[string]*models.Warning{}}
	for _, w := range ws {
		r.byID[w.ID] = w
	}
	return r
}

func (r *fakeWarningRepo) GetByID(id string) (*models.Warning, error) {
	w, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("warning %s: %w", id, mongo.ErrNoDocuments)
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWarningRepo) Create(w *models.Warning) error {
	r.byID[w.ID] = w
	return nil
}

func (r *fakeWarningRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	_, err := r.ApplyUpdate(id, nil, updateDoc)
	return err
}

func (r *fakeWarningRepo) ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.Warning, error) {
	w, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("warning %s: %w", id, mongo.ErrNoDocuments)
	}
	for k, v := range guard {
		switch k {
		case "status":
			if w.Status != v.(models.WarningStatus) {
				return nil, fmt.Errorf("guard failed: %w", mongo.ErrNoDocuments)
			}
		case "isActive":
			if w.IsActive != v.(bool) {
				return nil, fmt.Errorf("guard failed: %w", mongo.ErrNoDocuments)
			}
		case "acknowledgedAt":
			// Only $exists:false guards are produced by the engine.
			if w.AcknowledgedAt != nil {
				return nil, fmt.Errorf("guard failed: %w", mongo.ErrNoDocuments)
			}
		}
	}
	if set, ok := updateDoc["$set"].(bson.M); ok {
		for k, v := range set {
			switch k {
			case "status":
				w.Status = v.(models.WarningStatus)
			case "isActive":
				w.IsActive = v.(bool)
			case "acknowledgedBy":
				w.AcknowledgedBy = v.(string)
			case "acknowledgedAt":
				t := v.(time.Time)
				w.AcknowledgedAt = &t
			case "resolvedBy":
				w.ResolvedBy = v.(string)
			case "resolvedAt":
				t := v.(time.Time)
				w.ResolvedAt = &t
			case "resolutionNote":
				w.ResolutionNote = v.(string)
			case "updatedAt":
				w.UpdatedAt = v.(time.Time)
			}
		}
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWarningRepo) List(filter warningRepo.WarningFilter, page, limit int64) ([]models.Warning, error) {
	var out []models.Warning
	for _, w := range r.byID {
		if filter.UserID != "" && w.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && w.Status != filter.Status {
			continue
		}
		out = append(out, *w)
	}
	return out, nil
}

func (r *fakeWarningRepo) ExpireDue(now time.Time) (int64, error) {
	var n int64
	for _, w := range r.byID {
		if w.Status == models.WarningActive && w.ExpiresAt.Before(now) {
			w.Status = models.WarningExpired
			w.IsActive = false
			w.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *fakeWarningRepo) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	var n int64
	for id, w := range r.byID {
		if w.Status == models.WarningExpired && w.ExpiresAt.Before(cutoff) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeWarningRepo) CountActiveByProfile() (map[string]int, error) {
	out := map[string]int{}
	for _, w := range r.byID {
		if w.Status == models.WarningActive {
			out[w.ProfileID]++
		}
	}
	return out, nil
}

func (r *fakeWarningRepo) CountsByField(field string) (map[string]int64, error) {
	out := map[string]int64{}
	for _, w := range r.byID {
		switch field {
		case "status":
			out[string(w.Status)]++
		case "severity":
			out[string(w.Severity)]++
		case "category":
			out[string(w.Category)]++
		}
	}
	return out, nil
}

func (r *fakeWarningRepo) TopIssuers(n int64) ([]warningRepo.IssuerCount, error) {
	counts := map[string]int64{}
	for _, w := range r.byID {
		counts[w.IssuedBy]++
	}
	var out []warningRepo.IssuerCount
	for id, c := range counts {
		out = append(out, warningRepo.IssuerCount{IssuerID: id, Count: c})
	}
	return out, nil
}

var _ warningRepo.WarningRepository = (*fakeWarningRepo)(nil)

type fakeProfileRepo struct {
	byID map[string]*models.Profile
}

func newFakeProfileRepo(ps ...*models.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{byID: map[string]*models.Profile{}}
	for _, p := range ps {
		r.byID[p.ID] = p
	}
	return r
}

func (r *fakeProfileRepo) GetByID(id string) (*models.Profile, error) {
	p, ok := r.byID[id]
	if !ok || p.IsDeleted {
		return nil, fmt.Errorf("profile %s: %w", id, mongo.ErrNoDocuments)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) GetByIDIncludeDeleted(id string) (*models.Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, mongo.ErrNoDocuments)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) GetByUserID(userID string) (*models.Profile, error) {
	for _, p := range r.byID {
		if p.UserID == userID && !p.IsDeleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("profile for user %s: %w", userID, mongo.ErrNoDocuments)
}

func (r *fakeProfileRepo) Create(p *models.Profile) error {
	r.byID[p.ID] = p
	return nil
}

func (r *fakeProfileRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("profile %s: %w", id, mongo.ErrNoDocuments)
	}
	return nil
}

func (r *fakeProfileRepo) List(filter bson.M, page, limit int64) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range r.byID {
		if !p.IsDeleted {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) SetWarningCount(id string, count int) error {
	p, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("profile %s: %w", id, mongo.ErrNoDocuments)
	}
	p.WarningsCount = count
	return nil
}

func (r *fakeProfileRepo) ClearWarningCounts(activeIDs []string) (int64, error) {
	active := map[string]bool{}
	for _, id := range activeIDs {
		active[id] = true
	}
	var cleared int64
	for id, p := range r.byID {
		if p.WarningsCount > 0 && !active[id] {
			p.WarningsCount = 0
			cleared++
		}
	}
	return cleared, nil
}

var _ profileRepo.ProfileRepository = (*fakeProfileRepo)(nil)

func newTestEngine(
	providers *fakeProviderRepo,
	clients *fakeClientRepo,
	warnings *fakeWarningRepo,
	profiles *fakeProfileRepo,
) *Engine {
	if providers == nil {
		providers = newFakeProviderRepo()
	}
	if clients == nil {
		clients = newFakeClientRepo()
	}
	if warnings == nil {
		warnings = newFakeWarningRepo()
	}
	if profiles == nil {
		profiles = newFakeProfileRepo()
	}
	e, _ := NewEngine(providers, clients, warnings, profiles, zap.NewNop())
	return e
}
