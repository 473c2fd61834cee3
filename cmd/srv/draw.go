package main

import (
	"fmt"

	"github.com/questx-lab/prizechest/internal/model"
	"github.com/urfave/cli/v2"
)

func (s *srv) startDraw(cctx *cli.Context) error {
	s.loadRepos()
	if err := s.loadStore(); err != nil {
		return err
	}
	defer s.close()
	s.loadDomains()

	resp, err := s.drawDomain.Claim(s.ctx, &model.ClaimPrizeRequest{Name: cctx.String("name")})
	if err != nil {
		return err
	}

	fmt.Fprintf(cctx.App.Writer, "%s: %s (%s, %s)\n",
		resp.Winner.Name, resp.Outcome.Label, resp.Outcome.Kind, resp.Outcome.Rarity)
	return nil
}
