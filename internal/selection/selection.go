package selection

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/arexur/video-combiner/internal/media"
	"github.com/arexur/video-combiner/internal/queue"
)

// ErrNoEligibleSources indicates the source folder held no file that fits
// under the job's duration limit.
var ErrNoEligibleSources = errors.New("no eligible source videos")

// OrderPending sorts pending rows into claim order: oldest CreatedDate first,
// ties broken by JobID. Rows that fail validation are dropped so malformed
// entries are never claimed.
func OrderPending(rows []*queue.Row) []*queue.Row {
	ordered := make([]*queue.Row, 0, len(rows))
	for _, row := range rows {
		if row == nil || row.Status != queue.StatusPending {
			continue
		}
		if err := row.Validate(); err != nil {
			continue
		}
		ordered = append(ordered, row)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].JobID < ordered[j].JobID
	})
	return ordered
}

// NextJob returns the row OrderPending ranks first, or nil when none qualify.
func NextJob(rows []*queue.Row) *queue.Row {
	ordered := OrderPending(rows)
	if len(ordered) == 0 {
		return nil
	}
	return ordered[0]
}

// Subset picks a random subset of files whose size stays within maxVideos and
// whose cumulative duration stays within maxDuration: shuffle, then greedily
// accept files that still fit. The caller injects the random source so tests
// can pin the shuffle.
func Subset(files []media.File, maxVideos int, maxDuration time.Duration, rng *rand.Rand) ([]media.File, error) {
	if len(files) == 0 {
		return nil, ErrNoEligibleSources
	}

	shuffled := make([]media.File, len(files))
	copy(shuffled, files)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var picked []media.File
	var total time.Duration
	for _, file := range shuffled {
		if len(picked) >= maxVideos {
			break
		}
		if total+file.Duration > maxDuration {
			continue
		}
		picked = append(picked, file)
		total += file.Duration
		if total >= maxDuration {
			break
		}
	}

	if len(picked) == 0 {
		return nil, ErrNoEligibleSources
	}
	return picked, nil
}
