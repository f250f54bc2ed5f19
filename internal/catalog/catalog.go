package catalog

import (
	"context"
	"errors"

	"spot_difference/internal/domain"
)

// ErrNotFound - для сложности нет набора картинок
var ErrNotFound = errors.New("набор не найден")

// Store - источник наборов отличий. Для ядра игры только чтение,
// Put используется загрузкой контента админом.
type Store interface {
	Get(ctx context.Context, difficulty domain.Difficulty) (*domain.DifferenceCatalog, error)
	List(ctx context.Context) ([]domain.CatalogSummary, error)
	Put(ctx context.Context, c *domain.DifferenceCatalog) error
}

// Fixtures - встроенные наборы (координаты в шкале 0-100)
func Fixtures() []*domain.DifferenceCatalog {
	return []*domain.DifferenceCatalog{
		{
			ID:         1,
			Difficulty: domain.DifficultyEasy,
			ImageURL1:  "/uploads/image1_easy.jpg",
			ImageURL2:  "/uploads/image2_easy.jpg",
			Differences: []domain.Difference{
				domain.DifferenceFromSource(15, 15),
				domain.DifferenceFromSource(50, 50),
				domain.DifferenceFromSource(85, 85),
			},
		},
		{
			ID:         2,
			Difficulty: domain.DifficultyMedium,
			ImageURL1:  "/uploads/image1_medium.jpg",
			ImageURL2:  "/uploads/image2_medium.jpg",
			Differences: []domain.Difference{
				domain.DifferenceFromSource(10, 10),
				domain.DifferenceFromSource(30, 60),
				domain.DifferenceFromSource(60, 30),
				domain.DifferenceFromSource(90, 90),
			},
		},
		{
			ID:         3,
			Difficulty: domain.DifficultyHard,
			ImageURL1:  "/uploads/image1_hard.jpg",
			ImageURL2:  "/uploads/image2_hard.jpg",
			Differences: []domain.Difference{
				domain.DifferenceFromSource(7.5, 7.5),
				domain.DifferenceFromSource(17.5, 82.5),
				domain.DifferenceFromSource(27.5, 27.5),
				domain.DifferenceFromSource(37.5, 62.5),
				domain.DifferenceFromSource(47.5, 47.5),
			},
		},
	}
}
