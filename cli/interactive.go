package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dealhound/dealhound/models"
)

// promptCriteria walks the user through one search request on a plain
// line-oriented prompt.
func promptCriteria(in io.Reader, out io.Writer, defaults models.Criteria) (models.Criteria, error) {
	scanner := bufio.NewScanner(in)
	read := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	fmt.Fprintln(out, "Enter food items (comma-separated), e.g. pizza, burger, biryani")
	itemsLine, err := read("> ")
	if err != nil {
		return models.Criteria{}, err
	}
	c := models.Criteria{Items: strings.Split(itemsLine, ",")}

	ratingLine, err := read(fmt.Sprintf("Minimum rating (default %g): ", defaults.MinRating))
	if err != nil {
		return models.Criteria{}, err
	}
	if ratingLine == "" {
		c.MinRating = defaults.MinRating
	} else {
		rating, err := strconv.ParseFloat(ratingLine, 64)
		if err != nil {
			return models.Criteria{}, fmt.Errorf("invalid rating %q", ratingLine)
		}
		c.MinRating = rating
	}

	if c.PriceMin, err = promptPrice(read, "Minimum price (leave empty for no limit): "); err != nil {
		return models.Criteria{}, err
	}
	if c.PriceMax, err = promptPrice(read, "Maximum price (leave empty for no limit): "); err != nil {
		return models.Criteria{}, err
	}

	maxLine, err := read(fmt.Sprintf("Max results per platform (default %d): ", defaults.MaxResultsPerPlatform))
	if err != nil {
		return models.Criteria{}, err
	}
	if maxLine == "" {
		c.MaxResultsPerPlatform = defaults.MaxResultsPerPlatform
	} else {
		maxResults, err := strconv.Atoi(maxLine)
		if err != nil {
			return models.Criteria{}, fmt.Errorf("invalid max results %q", maxLine)
		}
		c.MaxResultsPerPlatform = maxResults
	}

	if c.Location, err = read("Location (optional, e.g. Bangalore): "); err != nil {
		return models.Criteria{}, err
	}

	return models.NewCriteria(c)
}

func promptPrice(read func(string) (string, error), prompt string) (*float64, error) {
	line, err := read(prompt)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, nil
	}
	price, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", line)
	}
	return &price, nil
}
