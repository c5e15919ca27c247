package onig

// Split slices the subject into the substrings between the matches.
// The count n determines the number of substrings:
//
//	n > 0: at most n substrings; the last substring is the unsplit remainder.
//	n == 0: the result is nil.
//	n < 0: all substrings.
func (r *Regex) Split(subject string, n int) ([]string, error) {
	if n == 0 {
		return nil, nil
	}

	if len(r.pattern) > 0 && len(subject) == 0 {
		return []string{""}, nil
	}

	matches, err := r.FindAll([]byte(subject), n)
	if err != nil {
		return nil, err
	}

	strs := make([]string, 0, len(matches))

	beg := 0
	end := 0

	for _, match := range matches {
		if n > 0 && len(strs) == n-1 {
			break
		}

		end = match[0]
		if match[1] != 0 {
			strs = append(strs, subject[beg:end])
		}
		beg = match[1]
	}

	if end != len(subject) {
		strs = append(strs, subject[beg:])
	}

	return strs, nil
}
