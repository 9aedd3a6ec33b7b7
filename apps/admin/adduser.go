package main

import (
	"github.com/laurahq/lms/core"
	"github.com/laurahq/lms/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(email, name, role, pwd string) error {
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)

	usr, err := cli.usrSvc.GetByEmail(email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Create(user.NewUser{
			FullName:        name,
			Email:           email,
			Role:            role,
			Password:        pwd,
			PasswordConfirm: pwd,
		})
		return err
	}

	active := true
	_, err = cli.usrSvc.Update(usr.ID, user.UpdateUser{
		FullName:        name,
		Email:           email,
		Role:            role,
		IsActive:        &active,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	return err
}
