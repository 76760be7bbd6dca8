package services

import (
	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
)

// GetTaskDetail assembles the task page with a fixed number of queries
// regardless of how many variants, items or subdatasets the task has.
func (s *taskService) GetTaskDetail(dbc dbctx.Context, id int) (*types.TaskDetail, error) {
	const op = "task.detail"
	task, err := s.taskRepo.GetByID(dbc, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if task == nil {
		return nil, notFound(op, msgTaskNotFound)
	}
	detail := &types.TaskDetail{
		ID:                   task.ID,
		Name:                 task.Name,
		Description:          task.Description,
		Status:               task.Status,
		CreatedAt:            task.CreatedAt,
		IsExternal:           task.IsExternal,
		Variants:             []types.VariantSummary{},
		Subdatasets:          []types.SubdatasetSummary{},
		SubdatasetsByVariant: []types.VariantSubdatasets{},
		TrainingRuns:         []*types.TrainingRun{},
		Evaluations:          []*types.Evaluation{},
	}

	variants, err := s.variantRepo.ListByTaskIDs(dbc, []int{id}, true)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if len(variants) == 0 {
		return detail, nil
	}
	variantIDs := make([]int, 0, len(variants))
	for _, v := range variants {
		variantIDs = append(variantIDs, v.ID)
	}

	itemRows, err := s.variantItemRepo.ListByVariantIDs(dbc, variantIDs)
	if err != nil {
		return nil, storeErr(op, err)
	}
	itemsByVariant := itemSummaries(itemRows)

	links, err := s.linkRepo.ListByVariantIDs(dbc, variantIDs)
	if err != nil {
		return nil, storeErr(op, err)
	}
	subIDs := make([]int, 0, len(links))
	seenSub := make(map[int]bool, len(links))
	for _, l := range links {
		if !seenSub[l.SubdatasetID] {
			seenSub[l.SubdatasetID] = true
			subIDs = append(subIDs, l.SubdatasetID)
		}
	}
	subs, err := s.subdatasetRepo.GetByIDsWithRefs(dbc, subIDs)
	if err != nil {
		return nil, storeErr(op, err)
	}
	subByID := make(map[int]types.SubdatasetSummary, len(subs))
	for _, sd := range subs {
		subByID[sd.ID] = types.NewSubdatasetSummary(sd)
	}
	subsByVariant := make(map[int][]types.SubdatasetSummary, len(variants))
	for _, l := range links {
		if sd, ok := subByID[l.SubdatasetID]; ok {
			subsByVariant[l.TaskVariantID] = append(subsByVariant[l.TaskVariantID], sd)
		}
	}

	runs, err := s.trainingRepo.ListRunsByTaskID(dbc, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	evals, err := s.trainingRepo.ListEvaluationsByTaskID(dbc, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	detail.TrainingRuns = nonNil(runs)
	detail.Evaluations = nonNil(evals)

	for _, v := range variants {
		summary := types.NewVariantSummary(v, itemsByVariant[v.ID])
		group := nonNil(subsByVariant[v.ID])
		detail.Variants = append(detail.Variants, summary)
		detail.SubdatasetsByVariant = append(detail.SubdatasetsByVariant, types.VariantSubdatasets{
			Variant:     summary,
			Subdatasets: group,
		})
		// The flat list mirrors the groups, so its length is the sum of group sizes.
		detail.Subdatasets = append(detail.Subdatasets, group...)
	}
	return detail, nil
}
