package domain

// Classify partitions extracted items into the feed, pump and diaper buckets. Items whose
// discriminant is not recognised are returned in dropped, in input order, so the caller
// can log them; they are never persisted.
func Classify(items []Item) (batch Batch, dropped []Item) {
	for _, item := range items {
		switch item.Activity {
		case KindFeed:
			batch.Feeds = append(batch.Feeds, item.feed())
		case KindPump:
			batch.Pumps = append(batch.Pumps, item.pump())
		case KindDiaper:
			batch.Diapers = append(batch.Diapers, item.diaper())
		default:
			dropped = append(dropped, item)
		}
	}
	return batch, dropped
}
