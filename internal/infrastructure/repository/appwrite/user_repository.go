package appwrite

import (
	"context"
	"fmt"

	"store-it/internal/appwrite"
	"store-it/internal/appwrite/query"
	"store-it/internal/domain/entities"
	"store-it/internal/domain/repositories"
)

type UserRepo struct {
	dbs *appwrite.Databases
	ids Collections
}

var _ repositories.UserRepository = (*UserRepo)(nil)

func NewUserRepo(client *appwrite.Client, ids Collections) *UserRepo {
	return &UserRepo{dbs: client.Databases(), ids: ids}
}

func (r *UserRepo) findOne(ctx context.Context, attribute, value string) (*entities.User, error) {
	qs := []query.Query{query.Equal(attribute, value)}
	list, err := r.dbs.ListDocuments(ctx, r.ids.DatabaseID, r.ids.UsersCollectionID, query.Strings(qs))
	if err != nil {
		return nil, fmt.Errorf("find user by %s: %w", attribute, err)
	}
	if list.Total <= 0 || len(list.Documents) == 0 {
		return nil, nil
	}
	var u entities.User
	if err := list.Documents[0].Decode(&u); err != nil {
		return nil, fmt.Errorf("decode user document: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepo) GetByAccountID(ctx context.Context, accountID string) (*entities.User, error) {
	return r.findOne(ctx, "accountId", accountID)
}

func (r *UserRepo) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	data := map[string]any{
		"email":     user.Email,
		"fullName":  user.FullName,
		"accountId": user.AccountID,
		"avatar":    user.Avatar,
	}
	doc, err := r.dbs.CreateDocument(ctx, r.ids.DatabaseID, r.ids.UsersCollectionID, appwrite.UniqueID(), data, nil)
	if err != nil {
		return nil, fmt.Errorf("create user document: %w", err)
	}
	var u entities.User
	if err := doc.Decode(&u); err != nil {
		return nil, fmt.Errorf("decode user document: %w", err)
	}
	return &u, nil
}
