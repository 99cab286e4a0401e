package repository

import (
	"context"
	"fmt"

	"github.com/academyops/clinicboard/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// GetByID fetches one member, nil when it does not exist.
func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	query := `
		SELECT id, branch_id, full_name, role, created_at
		FROM members
		WHERE id = $1
	`

	var member model.Member
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&member.ID,
		&member.BranchID,
		&member.FullName,
		&member.Role,
		&member.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get member by id: %w", err)
	}

	return &member, nil
}

// GetByIDs fetches members by a list of ids, for name lookups on boards.
func (r *MemberRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Member, error) {
	if len(ids) == 0 {
		return []*model.Member{}, nil
	}

	query := `
		SELECT id, branch_id, full_name, role, created_at
		FROM members
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get members by ids: %w", err)
	}
	defer rows.Close()

	var members []*model.Member
	for rows.Next() {
		var member model.Member
		err := rows.Scan(
			&member.ID,
			&member.BranchID,
			&member.FullName,
			&member.Role,
			&member.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, &member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}
