// Package seed loads the landing page content: departments, news and FAQs.
package seed

import (
	"context"
	"fmt"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/services"
)

// Result counts what a run inserted.
type Result struct {
	Departments int
	News        int
	FAQs        int
}

var departments = []struct{ name, description, icon string }{
	{"Dentistry", "Teeth cleaning, fillings and oral surgery.", "smile"},
	{"Primary Care", "General consultations and preventive care.", "stethoscope"},
	{"Cardiology", "Heart and blood vessel conditions.", "heart-pulse"},
	{"MRI Resonance", "Magnetic resonance imaging.", "microscope"},
	{"Blood Test", "Blood panels and screenings.", "droplets"},
	{"Psychologist", "Mental health assessment and therapy.", "brain"},
	{"Laboratory", "Diagnostic laboratory services.", "flask-conical"},
	{"X-Ray", "Radiography and imaging.", "scan"},
}

var news = []models.News{
	{
		Title:    "6 Tips To Protect Your Mental Health When You're Sick",
		Category: "Medical",
		Content:  "Being unwell affects more than the body. Rest, stay connected and ask for help early.",
		Author:   "Rebecca Lee",
		Image:    "https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=420&h=280&fit=crop",
	},
	{
		Title:    "Understanding Chronic Disease Management",
		Category: "Health",
		Content:  "Chronic conditions need a plan shared by the patient and their care team.",
		Author:   "Dr. Sarah Johnson",
		Image:    "https://images.unsplash.com/photo-1505577058444-a3dab90d4253?w=420&h=280&fit=crop",
	},
	{
		Title:    "The Importance of Regular Health Checkups",
		Category: "Wellness",
		Content:  "Routine checkups catch problems before they become serious.",
		Author:   "Dr. Michael Chen",
		Image:    "https://images.unsplash.com/photo-1490645935967-10de6ba17061?w=420&h=280&fit=crop",
	},
}

var faqs = []struct{ question, answer string }{
	{
		"Why choose our medical for your family?",
		"We offer comprehensive, patient-centric care with experienced specialists, modern facilities, and personalized treatment plans.",
	},
	{
		"Why we are different from others?",
		"Our hybrid platform blends virtual and in-person care, ensuring continuity across consultations, diagnostics, and follow-ups.",
	},
	{
		"Trusted & experienced senior care & love",
		"Our geriatric team provides compassionate support, preventive screenings, and long-term management tailored to seniors.",
	},
	{
		"How to get appointment for emergency cases?",
		"Use the emergency hotline within the app or call our 24/7 support team for immediate triage and priority scheduling.",
	},
}

// Run inserts the default content. Each collection is only seeded while it is empty,
// so running it twice is harmless.
func Run(ctx context.Context, content *services.ContentService) (Result, error) {
	var res Result

	existingDepartments, err := content.ListDepartments(ctx)
	if err != nil {
		return res, fmt.Errorf("list departments: %w", err)
	}
	if len(existingDepartments) == 0 {
		for _, d := range departments {
			if _, err := content.CreateDepartment(ctx, d.name, d.description, d.icon); err != nil {
				return res, fmt.Errorf("seed department %q: %w", d.name, err)
			}
			res.Departments++
		}
	}

	existingNews, err := content.ListNews(ctx, "", 1)
	if err != nil {
		return res, fmt.Errorf("list news: %w", err)
	}
	if len(existingNews) == 0 {
		for _, n := range news {
			article := n
			article.Published = true
			if _, err := content.CreateNews(ctx, &article); err != nil {
				return res, fmt.Errorf("seed news %q: %w", n.Title, err)
			}
			res.News++
		}
	}

	existingFAQs, err := content.ListFAQs(ctx)
	if err != nil {
		return res, fmt.Errorf("list faqs: %w", err)
	}
	if len(existingFAQs) == 0 {
		for i, f := range faqs {
			order := i + 1
			faq := &models.FAQ{Question: f.question, Answer: f.answer, Category: "General", Order: &order}
			if _, err := content.CreateFAQ(ctx, faq); err != nil {
				return res, fmt.Errorf("seed faq %q: %w", f.question, err)
			}
			res.FAQs++
		}
	}

	return res, nil
}
