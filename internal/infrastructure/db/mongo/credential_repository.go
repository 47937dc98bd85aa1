package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teamhub/gatekeeper/internal/core/domain"
)

const (
	usersCollection     = "users"
	groupsCollection    = "groups"
	functionsCollection = "functions"
)

// CredentialRepository implements ports.CredentialStore and
// ports.CredentialWriter on MongoDB. Role assignment is embedded in the user
// document; group membership lives on the group document as a member list so
// the per-user status can be resolved in one query.
type CredentialRepository struct {
	users     *mongo.Collection
	groups    *mongo.Collection
	functions *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database) *CredentialRepository {
	return &CredentialRepository{
		users:     db.Collection(usersCollection),
		groups:    db.Collection(groupsCollection),
		functions: db.Collection(functionsCollection),
	}
}

type mongoRole struct {
	ID   int    `bson:"id"`
	Key  string `bson:"key"`
	Name string `bson:"name"`
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserKey      string             `bson:"user_key"`
	Name         string             `bson:"name"`
	PasswordHash string             `bson:"password_hash"`
	Salt         string             `bson:"salt"`
	Iterations   int                `bson:"iterations"`
	Digest       string             `bson:"digest"`
	LocaleKey    string             `bson:"locale_key,omitempty"`
	Admin        bool               `bson:"admin"`
	Roles        []mongoRole        `bson:"roles,omitempty"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

type mongoMember struct {
	UserKey  string `bson:"user_key"`
	Status   int    `bson:"status"`
	Editable bool   `bson:"editable"`
}

type mongoGroup struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Members     []mongoMember      `bson:"members,omitempty"`
}

type mongoFunction struct {
	Key     string `bson:"function_key"`
	RoleIDs []int  `bson:"role_ids"`
}

func (r *CredentialRepository) FindUserByKey(ctx context.Context, userKey string) (*domain.User, error) {
	var mu mongoUser
	if err := r.users.FindOne(ctx, bson.M{"user_key": userKey}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *CredentialRepository) ListRolesForUser(ctx context.Context, userKey string) ([]domain.Role, error) {
	var mu mongoUser
	if err := r.users.FindOne(ctx, bson.M{"user_key": userKey}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user roles: %w", err)
	}

	roles := make([]domain.Role, 0, len(mu.Roles))
	for _, mr := range mu.Roles {
		roles = append(roles, domain.Role{ID: domain.RoleID(mr.ID), Key: mr.Key, Name: mr.Name})
	}
	return roles, nil
}

func (r *CredentialRepository) ListGroupsForUser(ctx context.Context, userKey string) ([]domain.Group, error) {
	cur, err := r.groups.Find(ctx, bson.M{"members.user_key": userKey})
	if err != nil {
		return nil, fmt.Errorf("find groups: %w", err)
	}
	defer cur.Close(ctx)

	var groups []domain.Group
	for cur.Next(ctx) {
		var mg mongoGroup
		if err := cur.Decode(&mg); err != nil {
			return nil, fmt.Errorf("decode group: %w", err)
		}
		g := domain.Group{
			ID:          mg.ID.Hex(),
			Name:        mg.Name,
			Description: mg.Description,
		}
		for _, m := range mg.Members {
			if m.UserKey == userKey {
				g.Status = m.Status
				g.Editable = m.Editable
				break
			}
		}
		groups = append(groups, g)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

func (r *CredentialRepository) ListAllFunctions(ctx context.Context) ([]domain.Function, error) {
	cur, err := r.functions.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find functions: %w", err)
	}
	defer cur.Close(ctx)

	var functions []domain.Function
	for cur.Next(ctx) {
		var mf mongoFunction
		if err := cur.Decode(&mf); err != nil {
			return nil, fmt.Errorf("decode function: %w", err)
		}
		fn := domain.Function{Key: mf.Key}
		for _, id := range mf.RoleIDs {
			fn.RoleIDs = append(fn.RoleIDs, domain.RoleID(id))
		}
		functions = append(functions, fn)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate functions: %w", err)
	}
	return functions, nil
}

func (r *CredentialRepository) CreateUser(ctx context.Context, cred *domain.Credential) (*domain.User, error) {
	now := time.Now().UTC().Unix()
	doc := mongoUser{
		UserKey:      cred.UserKey,
		Name:         cred.Name,
		PasswordHash: cred.Password,
		Salt:         cred.Salt,
		Iterations:   cred.Iterations,
		Digest:       cred.Digest,
		LocaleKey:    cred.LocaleKey,
		Admin:        cred.Admin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return r.FindUserByKey(ctx, cred.UserKey)
}

func (r *CredentialRepository) UpdateUser(ctx context.Context, cred *domain.Credential) (*domain.User, error) {
	set := bson.M{
		"name":       cred.Name,
		"locale_key": cred.LocaleKey,
		"admin":      cred.Admin,
		"updated_at": time.Now().UTC().Unix(),
	}
	// Credential fields change only when a new password was hashed; an
	// empty password means the stored hash, salt and iterations stand.
	if cred.Password != "" {
		set["password_hash"] = cred.Password
		set["salt"] = cred.Salt
		set["iterations"] = cred.Iterations
		set["digest"] = cred.Digest
	}

	res, err := r.users.UpdateOne(ctx, bson.M{"user_key": cred.UserKey}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindUserByKey(ctx, cred.UserKey)
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		UserKey:      mu.UserKey,
		Name:         mu.Name,
		PasswordHash: mu.PasswordHash,
		Salt:         mu.Salt,
		Iterations:   mu.Iterations,
		Digest:       mu.Digest,
		LocaleKey:    mu.LocaleKey,
		Admin:        mu.Admin,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
