package model

// SearchResult is a single provider search item reshaped for clients.
// PosterPath carries a full image URL or nil, BackdropPath the raw
// provider path.
type SearchResult struct {
	TmdbId       TmdbId  `json:"tmdb_id"`
	Title        string  `json:"title"`
	PosterPath   *string `json:"poster_path"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	BackdropPath *string `json:"backdrop_path"`
}

// SearchPage is one page of search results.
type SearchPage struct {
	Results    []SearchResult `json:"results"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

// Genre defines a provider movie genre.
type Genre struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is a single cast entry of a movie's credits. Crew
// entries are not exposed. ProfilePath carries a full image URL or nil.
type CastMember struct {
	Id                 int64   `json:"id"`
	Name               string  `json:"name"`
	OriginalName       string  `json:"original_name"`
	Character          string  `json:"character"`
	ProfilePath        *string `json:"profile_path"`
	Order              int     `json:"order"`
	Gender             int     `json:"gender"`
	KnownForDepartment string  `json:"known_for_department"`
	CastId             int     `json:"cast_id"`
	CreditId           string  `json:"credit_id"`
}
