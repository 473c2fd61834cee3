package main

import (
	"github.com/questx-lab/prizechest/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}
	s.ctx = xcontext.WithDB(s.ctx, db)

	if err := s.migrateDB(); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Database migrated")
	return nil
}
