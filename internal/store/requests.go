package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a queued assignment request.
type RequestStatus string

const (
	StatusPending RequestStatus = "pending"
	StatusRunning RequestStatus = "running"
	StatusDone    RequestStatus = "done"
	StatusFailed  RequestStatus = "failed"
)

// AssignmentRequest is a queued assignment build.
type AssignmentRequest struct {
	ID          string          `json:"id"`
	Criteria    json.RawMessage `json:"criteria"`
	Cohort      []string        `json:"cohort"`
	Status      RequestStatus   `json:"status"`
	QuestionIDs []string        `json:"question_ids,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// RequestRepo manages the assignment request queue.
type RequestRepo struct {
	s *Store
}

// Requests returns the request repository.
func (s *Store) Requests() *RequestRepo {
	return &RequestRepo{s: s}
}

var requestColumns = []string{"id", "criteria", "cohort", "status", "error", "created_at", "completed_at"}

// Enqueue stores a pending request.
func (r *RequestRepo) Enqueue(ctx context.Context, criteria json.RawMessage, cohort []string) (*AssignmentRequest, error) {
	cohortJSON, err := json.Marshal(cohort)
	if err != nil {
		return nil, fmt.Errorf("marshal cohort: %w", err)
	}
	req := &AssignmentRequest{
		ID:        uuid.NewString(),
		Criteria:  criteria,
		Cohort:    cohort,
		Status:    StatusPending,
		CreatedAt: r.s.now().UTC(),
	}
	q := r.s.builder().Insert(tableRequests).
		Columns("id", "criteria", "cohort", "status", "created_at").
		Values(req.ID, string(criteria), string(cohortJSON), string(req.Status), req.CreatedAt)
	if _, err := exec(ctx, r.s.drv, q); err != nil {
		return nil, fmt.Errorf("enqueue request: %w", err)
	}
	return req, nil
}

func (r *RequestRepo) list(ctx context.Context, conn dialect.ExecQuerier, where *entsql.Predicate, limit int) ([]AssignmentRequest, error) {
	b := r.s.builder()
	q := b.Select(requestColumns...).
		From(b.Table(tableRequests)).
		Where(where).
		OrderBy("created_at", "id")
	if limit > 0 {
		q.Limit(limit)
	}
	var out []AssignmentRequest
	err := queryEach(ctx, conn, q, func(rows entsql.ColumnScanner) error {
		var (
			req       AssignmentRequest
			criteria  string
			cohort    string
			status    string
			errMsg    sql.NullString
			completed sql.NullTime
		)
		if err := rows.Scan(&req.ID, &criteria, &cohort, &status, &errMsg, &req.CreatedAt, &completed); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(cohort), &req.Cohort); err != nil {
			return fmt.Errorf("decode cohort of %s: %w", req.ID, err)
		}
		req.Criteria = json.RawMessage(criteria)
		req.Status = RequestStatus(status)
		req.Error = errMsg.String
		req.CreatedAt = req.CreatedAt.UTC()
		req.CompletedAt = nullTime(completed)
		out = append(out, req)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}

// Claim marks up to limit of the oldest pending requests running and
// returns them. A request claimed by another worker is skipped. The batch is
// claimed in one transaction so a failure leaves every request pending.
func (r *RequestRepo) Claim(ctx context.Context, limit int) ([]AssignmentRequest, error) {
	var claimed []AssignmentRequest
	err := r.s.withTx(ctx, func(tx dialect.Tx) error {
		pending, err := r.list(ctx, tx, entsql.EQ("status", string(StatusPending)), limit)
		if err != nil {
			return err
		}
		for _, req := range pending {
			q := r.s.builder().Update(tableRequests).
				Set("status", string(StatusRunning)).
				Where(entsql.And(entsql.EQ("id", req.ID), entsql.EQ("status", string(StatusPending))))
			n, err := exec(ctx, tx, q)
			if err != nil {
				return fmt.Errorf("claim request %s: %w", req.ID, err)
			}
			if n == 1 {
				req.Status = StatusRunning
				claimed = append(claimed, req)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Complete stores the selected questions and marks the request done.
func (r *RequestRepo) Complete(ctx context.Context, id string, questionIDs []string) error {
	return r.s.withTx(ctx, func(tx dialect.Tx) error {
		b := r.s.builder()
		if len(questionIDs) > 0 {
			ins := b.Insert(tableItems).Columns("request_id", "position", "question_id")
			for i, qid := range questionIDs {
				ins.Values(id, i, qid)
			}
			if _, err := exec(ctx, tx, ins); err != nil {
				return fmt.Errorf("insert assignment items: %w", err)
			}
		}
		upd := b.Update(tableRequests).
			Set("status", string(StatusDone)).
			Set("completed_at", r.s.now().UTC()).
			Where(entsql.EQ("id", id))
		if _, err := exec(ctx, tx, upd); err != nil {
			return fmt.Errorf("complete request %s: %w", id, err)
		}
		return nil
	})
}

// Fail marks the request failed with reason.
func (r *RequestRepo) Fail(ctx context.Context, id, reason string) error {
	q := r.s.builder().Update(tableRequests).
		Set("status", string(StatusFailed)).
		Set("error", reason).
		Set("completed_at", r.s.now().UTC()).
		Where(entsql.EQ("id", id))
	if _, err := exec(ctx, r.s.drv, q); err != nil {
		return fmt.Errorf("fail request %s: %w", id, err)
	}
	return nil
}

// Get returns the request with its selected questions, or ErrNotFound.
func (r *RequestRepo) Get(ctx context.Context, id string) (*AssignmentRequest, error) {
	reqs, err := r.list(ctx, r.s.drv, entsql.EQ("id", id), 1)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	req := reqs[0]

	b := r.s.builder()
	q := b.Select("question_id").
		From(b.Table(tableItems)).
		Where(entsql.EQ("request_id", id)).
		OrderBy("position")
	err = queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		var qid string
		if err := rows.Scan(&qid); err != nil {
			return err
		}
		req.QuestionIDs = append(req.QuestionIDs, qid)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list assignment items: %w", err)
	}
	return &req, nil
}
