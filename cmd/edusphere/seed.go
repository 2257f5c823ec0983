package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/edusphere/edusphere/store"
)

var seedCourses = []*store.CourseRecord{
	{ID: 1, Title: "Mathématiques Avancées", Description: "Algèbre linéaire, analyse et probabilités pour le supérieur.", Category: "Mathématiques", Level: "Avancé", Rating: 4.8},
	{ID: 2, Title: "Mathématiques pour débutants", Description: "Les bases du calcul et de la géométrie, pas à pas.", Category: "Mathématiques", Level: "Débutant", Rating: 4.5},
	{ID: 3, Title: "Physique Quantique", Description: "Introduction aux principes de la mécanique quantique.", Category: "Physique", Level: "Avancé", Rating: 4.7},
	{ID: 4, Title: "Programmation Python", Description: "Apprendre Python de zéro, avec des exercices pratiques.", Category: "Informatique", Level: "Débutant", Rating: 4.9},
	{ID: 5, Title: "Algorithmes et structures de données", Description: "Tris, graphes et complexité en informatique.", Category: "Informatique", Level: "Intermédiaire", Rating: 4.6},
	{ID: 6, Title: "Histoire de France", Description: "De la Gaule à la Cinquième République.", Category: "Histoire", Level: "Intermédiaire", Rating: 4.3},
	{ID: 7, Title: "Anglais professionnel", Description: "Communiquer en anglais dans un contexte de travail.", Category: "Langues", Level: "Intermédiaire", Rating: 4.4},
	{ID: 8, Title: "Chimie organique", Description: "Les grandes familles de molécules et leurs réactions.", Category: "Chimie", Level: "Avancé", Rating: 4.2},
}

var seedNews = []*store.NewsItem{
	{ID: 1, Title: "Nouveaux cours de mathématiques", Summary: "Deux nouveaux cours de mathématiques sont disponibles dans le catalogue.", Link: "https://edusphere.example.com/news/1"},
	{ID: 2, Title: "La médiathèque s'agrandit", Summary: "Plus de 200 nouveaux documents ont rejoint la médiathèque.", Link: "https://edusphere.example.com/news/2"},
	{ID: 3, Title: "Campagne de stages 2026", Summary: "Les offres de stages du semestre sont ouvertes aux candidatures.", Link: "https://edusphere.example.com/news/3"},
}

// seedDemoData fills the catalog and news tables when they are empty so the
// assistant has something to search in demo and dev modes.
func seedDemoData(ctx context.Context, st *store.Store) error {
	courses, err := st.ListCourses(ctx, &store.FindCourse{})
	if err != nil {
		return errors.Wrap(err, "failed to list courses")
	}
	if len(courses) == 0 {
		for _, course := range seedCourses {
			if err := st.UpsertCourse(ctx, course); err != nil {
				return errors.Wrapf(err, "failed to seed course %q", course.Title)
			}
		}
	}

	news, err := st.ListNews(ctx, &store.FindNews{})
	if err != nil {
		return errors.Wrap(err, "failed to list news")
	}
	if len(news) == 0 {
		now := time.Now().Unix()
		for i, item := range seedNews {
			item.CreatedTs = now - int64(len(seedNews)-i)*86400
			if err := st.UpsertNews(ctx, item); err != nil {
				return errors.Wrapf(err, "failed to seed news %q", item.Title)
			}
		}
	}
	return nil
}
