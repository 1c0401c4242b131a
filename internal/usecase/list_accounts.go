package usecase

import (
	"context"
	"sort"
)

// ListAccounts lists configured signing accounts without exposing keys
type ListAccounts struct {
	lister AccountLister
}

// NewListAccounts creates a new ListAccounts use case
func NewListAccounts(lister AccountLister) *ListAccounts {
	return &ListAccounts{lister: lister}
}

// Run returns accounts sorted with the default first, then by name
func (uc *ListAccounts) Run(ctx context.Context) ([]AccountInfo, error) {
	accounts := uc.lister.ListAccounts(ctx)
	sort.SliceStable(accounts, func(i, j int) bool {
		if accounts[i].Default != accounts[j].Default {
			return accounts[i].Default
		}
		return accounts[i].Name < accounts[j].Name
	})
	return accounts, nil
}
