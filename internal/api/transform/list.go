package transform

// ToList applies a single item transform across a listed page of models.
// The first failing item aborts the whole page, a partially transformed
// list is never returned.
func ToList[T any, K any](items []*T, toAPI func(T) (*K, error)) ([]K, error) {
	values := make([]K, len(items))

	for i, item := range items {
		value, err := toAPI(*item)
		if err != nil {
			return nil, err
		}

		values[i] = *value
	}

	return values, nil
}
