package services

import (
	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
)

func (s *taskService) Contract() domainagg.Contract       { return domainagg.TaskContract }
func (s *subdatasetService) Contract() domainagg.Contract { return domainagg.SubdatasetContract }
func (s *rawEpisodeService) Contract() domainagg.Contract { return domainagg.RawEpisodeContract }
func (s *itemService) Contract() domainagg.Contract       { return domainagg.ItemContract }
func (s *Seeder) Contract() domainagg.Contract            { return domainagg.SeedContract }
