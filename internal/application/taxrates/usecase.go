package taxrates

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// UseCase mantenimiento de las ventanas de alícuotas IBS/CBS.
type UseCase struct {
	repo repository.TaxRateRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.TaxRateRepository) *UseCase {
	return &UseCase{repo: repo}
}

// List devuelve todas las ventanas ordenadas por categoría y vigencia.
func (uc *UseCase) List(ctx context.Context) ([]dto.TaxRateWindowResponse, error) {
	windows, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(windows, func(i, j int) bool {
		if windows[i].Category != windows[j].Category {
			return windows[i].Category < windows[j].Category
		}
		return windows[i].ValidFrom.Before(windows[j].ValidFrom)
	})
	out := make([]dto.TaxRateWindowResponse, 0, len(windows))
	for _, w := range windows {
		out = append(out, toResponse(w))
	}
	return out, nil
}

// Create registra una ventana. No puede solaparse con otra de la misma categoría.
func (uc *UseCase) Create(ctx context.Context, in dto.TaxRateWindowRequest) (*dto.TaxRateWindowResponse, error) {
	from, err := time.Parse(dateLayout, in.ValidFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: valid_from debe ser YYYY-MM-DD", domain.ErrInvalidInput)
	}
	var to *time.Time
	if in.ValidTo != "" {
		t, err := time.Parse(dateLayout, in.ValidTo)
		if err != nil {
			return nil, fmt.Errorf("%w: valid_to debe ser YYYY-MM-DD", domain.ErrInvalidInput)
		}
		// Inclusivo: la ventana cubre todo el último día.
		end := t.Add(24*time.Hour - time.Nanosecond)
		if end.Before(from) {
			return nil, fmt.Errorf("%w: valid_to anterior a valid_from", domain.ErrInvalidInput)
		}
		to = &end
	}
	if in.IBSRate.IsNegative() || in.CBSRate.IsNegative() || in.SelectiveRate.IsNegative() {
		return nil, fmt.Errorf("%w: alícuotas negativas", domain.ErrInvalidInput)
	}

	w := &entity.TaxReformRateWindow{
		ID:            uuid.New().String(),
		Category:      strings.ToUpper(strings.TrimSpace(in.Category)),
		ValidFrom:     from,
		ValidTo:       to,
		IBSRate:       in.IBSRate,
		CBSRate:       in.CBSRate,
		SelectiveRate: in.SelectiveRate,
	}

	existing, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.Category == w.Category && overlaps(e, w) {
			return nil, fmt.Errorf("%w: se solapa con la ventana %s", domain.ErrConflict, e.ID)
		}
	}
	if err := uc.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	out := toResponse(w)
	return &out, nil
}

func overlaps(a, b *entity.TaxReformRateWindow) bool {
	// [a.from, a.to] ∩ [b.from, b.to] ≠ ∅ con to nil = infinito
	aEndsBeforeB := a.ValidTo != nil && a.ValidTo.Before(b.ValidFrom)
	bEndsBeforeA := b.ValidTo != nil && b.ValidTo.Before(a.ValidFrom)
	return !aEndsBeforeB && !bEndsBeforeA
}

func toResponse(w *entity.TaxReformRateWindow) dto.TaxRateWindowResponse {
	out := dto.TaxRateWindowResponse{
		ID:            w.ID,
		Category:      w.Category,
		ValidFrom:     w.ValidFrom.Format(dateLayout),
		IBSRate:       w.IBSRate,
		CBSRate:       w.CBSRate,
		SelectiveRate: w.SelectiveRate,
	}
	if w.ValidTo != nil {
		out.ValidTo = w.ValidTo.Format(dateLayout)
	}
	return out
}
