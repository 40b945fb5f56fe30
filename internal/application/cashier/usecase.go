package cashier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/cashsession"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/entity"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain/repository"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/logger"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/pkg/money"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// UseCase ciclo de vida de la caja del operador: apertura, sangria/suprimento, consulta y cierre.
// Cada operación toma la sesión con bloqueo de fila para serializarse con las ventas de la misma caja.
type UseCase struct {
	txRunner    TxRunner
	sessionRepo repository.CashSessionRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, sessionRepo repository.CashSessionRepository, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, sessionRepo: sessionRepo, log: log.Named("cashier"), now: time.Now}
}

// Open abre la caja del operador. Falla con SESSION_ALREADY_OPEN si ya tiene una abierta.
func (uc *UseCase) Open(ctx context.Context, op entity.Operator, in dto.OpenCashSessionRequest) (*dto.CashSessionResponse, error) {
	if op.ID == "" {
		return nil, domain.Reject(domain.CodeUnauthenticated, domain.ErrUnauthorized, "operador no autenticado")
	}
	var session *entity.CashSession
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		existing, err := repos.CashSessions.GetOpenByOperatorForUpdate(ctx, op.ID)
		if err != nil {
			return fmt.Errorf("sesión abierta: %w", err)
		}
		session, err = cashsession.Open(existing, op.ID, in.OpeningFloat, uc.now())
		if err != nil {
			return err
		}
		if err := repos.CashSessions.Create(ctx, session); err != nil {
			// Dos aperturas simultáneas: la segunda choca con el índice único parcial.
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.Reject(domain.CodeSessionAlreadyOpen, domain.ErrConflict, "el operador ya tiene una caja abierta")
			}
			return fmt.Errorf("abrir caja: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("session_id", session.ID).
		Str("operator_id", op.ID).
		Str("opening_float", session.OpeningFloat.StringFixed(2)).
		Msg("caja abierta")
	return ToResponse(session), nil
}

// Current devuelve la caja abierta del operador con sus movimientos y el efectivo esperado en curso.
func (uc *UseCase) Current(ctx context.Context, op entity.Operator) (*dto.CashSessionResponse, error) {
	session, err := uc.sessionRepo.GetOpenByOperator(ctx, op.ID)
	if err != nil {
		return nil, fmt.Errorf("sesión abierta: %w", err)
	}
	if session == nil {
		return nil, domain.Reject(domain.CodeNoOpenSession, domain.ErrNotFound, "no hay caja abierta")
	}
	movements, err := uc.sessionRepo.ListMovements(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("movimientos: %w", err)
	}
	session.Movements = movements
	return ToResponse(session), nil
}

// Get devuelve una sesión por ID (abierta o cerrada).
func (uc *UseCase) Get(ctx context.Context, sessionID string) (*dto.CashSessionResponse, error) {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sesión %s: %w", sessionID, err)
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	movements, err := uc.sessionRepo.ListMovements(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("movimientos: %w", err)
	}
	session.Movements = movements
	return ToResponse(session), nil
}

// RecordMovement registra una sangria o un suprimento en la caja abierta del operador.
func (uc *UseCase) RecordMovement(ctx context.Context, op entity.Operator, in dto.CashMovementRequest) (*dto.CashMovementResponse, error) {
	var movement *entity.CashMovement
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		session, err := openForUpdate(ctx, repos, op)
		if err != nil {
			return err
		}
		movementType := strings.ToUpper(strings.TrimSpace(in.Type))
		movement, err = cashsession.RecordMovement(session, movementType, in.Amount, strings.TrimSpace(in.Reason), op.ID, uc.now())
		if err != nil {
			return err
		}
		if err := repos.CashSessions.CreateMovement(ctx, movement); err != nil {
			return fmt.Errorf("guardar movimiento: %w", err)
		}
		return repos.CashSessions.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("session_id", movement.SessionID).
		Str("operator_id", op.ID).
		Str("type", movement.Type).
		Str("amount", movement.Amount.StringFixed(2)).
		Msg("movimiento de caja")
	out := toMovementResponse(*movement)
	return &out, nil
}

// Close confere y cierra la caja abierta del operador.
func (uc *UseCase) Close(ctx context.Context, op entity.Operator, in dto.CloseCashSessionRequest) (*dto.CashSessionResponse, error) {
	var session *entity.CashSession
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		session, err = openForUpdate(ctx, repos, op)
		if err != nil {
			return err
		}
		if err := cashsession.Close(session, in.CountedCash, uc.now()); err != nil {
			return err
		}
		if err := repos.CashSessions.Update(ctx, session); err != nil {
			return fmt.Errorf("cerrar caja: %w", err)
		}
		session.Movements, err = repos.CashSessions.ListMovements(ctx, session.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	ev := uc.log.Info()
	if !session.Discrepancy.IsZero() {
		ev = uc.log.Warn()
	}
	ev.Str("session_id", session.ID).
		Str("operator_id", op.ID).
		Str("expected", money.BRL(*session.ExpectedCash)).
		Str("counted", money.BRL(*session.CountedCash)).
		Str("discrepancy", session.Discrepancy.StringFixed(2)).
		Msg("caja cerrada")
	return ToResponse(session), nil
}

func openForUpdate(ctx context.Context, repos repository.TxRepos, op entity.Operator) (*entity.CashSession, error) {
	if op.ID == "" {
		return nil, domain.Reject(domain.CodeUnauthenticated, domain.ErrUnauthorized, "operador no autenticado")
	}
	session, err := repos.CashSessions.GetOpenByOperatorForUpdate(ctx, op.ID)
	if err != nil {
		return nil, fmt.Errorf("sesión abierta: %w", err)
	}
	if session == nil {
		return nil, domain.Reject(domain.CodeNoOpenSession, domain.ErrConflict, "no hay caja abierta")
	}
	return session, nil
}

// ToResponse mapea la sesión. En una caja abierta ExpectedCash es el esperado en curso.
func ToResponse(s *entity.CashSession) *dto.CashSessionResponse {
	expected := cashsession.ExpectedCash(s)
	if s.ExpectedCash != nil {
		expected = *s.ExpectedCash
	}
	out := &dto.CashSessionResponse{
		ID:              s.ID,
		OperatorID:      s.OperatorID,
		Status:          s.Status,
		OpenedAt:        s.OpenedAt.Format(time.RFC3339),
		OpeningFloat:    s.OpeningFloat,
		TotalCash:       s.TotalCash,
		TotalPix:        s.TotalPix,
		TotalCard:       s.TotalCard,
		TotalSuprimento: s.TotalSuprimento,
		TotalSangria:    s.TotalSangria,
		ExpectedCash:    expected,
		CountedCash:     s.CountedCash,
		Discrepancy:     s.Discrepancy,
		Movements:       make([]dto.CashMovementResponse, 0, len(s.Movements)),
	}
	if s.ClosedAt != nil {
		out.ClosedAt = s.ClosedAt.Format(time.RFC3339)
	}
	for _, m := range s.Movements {
		out.Movements = append(out.Movements, toMovementResponse(m))
	}
	return out
}

func toMovementResponse(m entity.CashMovement) dto.CashMovementResponse {
	return dto.CashMovementResponse{
		ID:         m.ID,
		Type:       m.Type,
		Amount:     m.Amount,
		Reason:     m.Reason,
		OperatorID: m.OperatorID,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
}
