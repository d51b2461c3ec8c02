package service

import "github.com/anoideaopen/inspector/core/srcscan/testdata/cyc/model"

type Named interface {
	Name() string
}

type Badge struct {
	User *model.User
}

func NewBadge(u *model.User) Badge {
	return Badge{User: u}
}

func (b Badge) Label() string { return "badge: " + b.User.Name() }

var _ Named = (*model.User)(nil)
